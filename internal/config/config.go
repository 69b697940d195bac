// Package config loads the archivekit configuration file.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	v1 "github.com/infracollect/archivekit/apis/v1"
	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/infracollect/archivekit/pkg/archive/backends"
	"github.com/spf13/afero"
)

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// Parse parses a YAML or JSON configuration and validates it.
func Parse(data []byte) (v1.Config, error) {
	var cfg v1.Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		return v1.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return v1.Config{}, err
	}

	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(fs afero.Fs, path string) (v1.Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return v1.Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

func Validate(cfg v1.Config) error {
	if err := defaultValidator.Struct(cfg); err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	if cfg.Export != nil && cfg.Export.Destination != nil {
		if n := countDestinations(cfg.Export.Destination); n > 1 {
			return fmt.Errorf("export destination must set exactly one of stdout, folder or s3, got %d", n)
		}
	}
	return nil
}

func countDestinations(d *v1.DestinationSpec) int {
	n := 0
	if d.Stdout != nil {
		n++
	}
	if d.Folder != nil {
		n++
	}
	if d.S3 != nil {
		n++
	}
	return n
}

// Backend returns the configured backend, or the default one.
func Backend(cfg v1.Config) archive.Backend {
	if cfg.Backend == "" {
		return backends.Default
	}
	return archive.Backend(cfg.Backend)
}

// Options returns the archive options described by cfg.
func Options(cfg v1.Config) archive.Options {
	if cfg.Compression == nil {
		return archive.DefaultOptions()
	}
	return archive.Options{
		Method: archive.Method(cfg.Compression.Method),
		Level:  cfg.Compression.Level,
	}.WithDefaults()
}
