package sinks

import (
	"context"
	"fmt"
	"io"
)

// Bundler packs files into a single archive.
type Bundler interface {
	AddFile(ctx context.Context, filename string, data io.Reader) error
	Close() (io.Reader, error)
	Extension() string
}

// BundleSink collects all writes into a bundle. On Close it finalizes the
// bundle and writes it as a single file to the inner sink.
type BundleSink struct {
	inner      Sink
	bundler    Bundler
	bundleName string
}

// NewBundleSink wraps inner. bundleName is used as is; callers append the
// bundler extension when they want one.
func NewBundleSink(inner Sink, bundler Bundler, bundleName string) *BundleSink {
	return &BundleSink{
		inner:      inner,
		bundler:    bundler,
		bundleName: bundleName,
	}
}

func (s *BundleSink) Name() string {
	return fmt.Sprintf("bundle(%s)->%s", s.bundleName, s.inner.Name())
}

// Inner returns the sink the bundle is written to.
func (s *BundleSink) Inner() Sink {
	return s.inner
}

func (s *BundleSink) Kind() string {
	return "bundle"
}

func (s *BundleSink) Write(ctx context.Context, path string, data io.Reader) error {
	if err := s.bundler.AddFile(ctx, path, data); err != nil {
		return fmt.Errorf("failed to add file to bundle: %w", err)
	}
	return nil
}

// Close finalizes the bundle, writes it to the inner sink and closes it.
func (s *BundleSink) Close(ctx context.Context) error {
	reader, err := s.bundler.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize bundle: %w", err)
	}

	if err := s.inner.Write(ctx, s.bundleName, reader); err != nil {
		return fmt.Errorf("failed to write bundle to sink: %w", err)
	}

	if err := s.inner.Close(ctx); err != nil {
		return fmt.Errorf("failed to close inner sink: %w", err)
	}

	return nil
}

var _ Sink = (*BundleSink)(nil)
