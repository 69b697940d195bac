// Package backends registers the zip engines shipped with archivekit.
package backends

import (
	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/infracollect/archivekit/pkg/archive/backends/kzip"
	"github.com/infracollect/archivekit/pkg/archive/backends/stdzip"
	"go.uber.org/zap"
)

const (
	// Klauspost uses github.com/klauspost/compress/zip.
	Klauspost archive.Backend = "klauspost"
	// Stdlib uses archive/zip.
	Stdlib archive.Backend = "stdlib"

	Default = Klauspost
)

// Register adds every shipped backend to registry.
func Register(registry *archive.Registry) {
	registry.Register(Klauspost, func(logger *zap.Logger, opts archive.Options) (archive.Engine, error) {
		return kzip.NewEngine(string(Klauspost), logger, opts)
	})
	registry.Register(Stdlib, func(logger *zap.Logger, opts archive.Options) (archive.Engine, error) {
		return stdzip.NewEngine(string(Stdlib), logger, opts)
	})
}

// NewRegistry returns a registry holding every shipped backend.
func NewRegistry() *archive.Registry {
	registry := archive.NewRegistry()
	Register(registry)
	return registry
}

// NewFactory returns a factory over every shipped backend.
func NewFactory(opts ...archive.FactoryOption) *archive.Factory {
	return archive.NewFactory(NewRegistry(), opts...)
}
