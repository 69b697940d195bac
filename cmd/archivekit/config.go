package main

import (
	"fmt"

	v1 "github.com/infracollect/archivekit/apis/v1"
	"github.com/infracollect/archivekit/internal/config"
	"github.com/infracollect/archivekit/internal/runner"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var compressionFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "method",
		Aliases: []string{"m"},
		Usage:   "Compression method for new entries (store, deflate, zstd)",
	},
	&cli.IntFlag{
		Name:  "level",
		Usage: "Compression level, 0 selects the method default",
	},
}

// loadConfig reads the configuration file, if any, and applies the command
// line overrides.
func loadConfig(fs afero.Fs, command *cli.Command) (v1.Config, error) {
	var cfg v1.Config
	if path := command.String("config"); path != "" {
		loaded, err := config.Load(fs, path)
		if err != nil {
			return v1.Config{}, err
		}
		cfg = loaded
	}

	if command.IsSet("backend") {
		cfg.Backend = command.String("backend")
	}
	if command.IsSet("method") || command.IsSet("level") {
		if cfg.Compression == nil {
			cfg.Compression = &v1.CompressionSpec{}
		}
		if command.IsSet("method") {
			cfg.Compression.Method = command.String("method")
		}
		if command.IsSet("level") {
			cfg.Compression.Level = int(command.Int("level"))
		}
	}

	if err := config.Validate(cfg); err != nil {
		return v1.Config{}, formatValidationError(err)
	}
	return cfg, nil
}

func newRunner(logger *zap.Logger, fs afero.Fs, command *cli.Command) (*runner.Runner, v1.Config, error) {
	cfg, err := loadConfig(fs, command)
	if err != nil {
		return nil, v1.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return runner.New(logger.Named("runner"), fs, cfg), cfg, nil
}

// exportSpec returns a copy of the configured export with the command line
// overrides applied.
func exportSpec(cfg v1.Config, command *cli.Command) (*v1.ExportSpec, error) {
	spec := &v1.ExportSpec{}
	if cfg.Export != nil {
		spec.Bundle = cfg.Export.Bundle
		if cfg.Export.Destination != nil {
			destination := *cfg.Export.Destination
			if destination.S3 != nil {
				s3 := *destination.S3
				destination.S3 = &s3
			}
			if destination.Folder != nil {
				folder := *destination.Folder
				destination.Folder = &folder
			}
			spec.Destination = &destination
		}
	}

	if command.IsSet("bundle") {
		spec.Bundle = command.String("bundle")
	}
	if command.IsSet("output") {
		spec.Destination = &v1.DestinationSpec{Folder: &v1.FolderSpec{Path: command.String("output")}}
	}

	if err := config.Validate(v1.Config{Export: spec}); err != nil {
		return nil, formatValidationError(err)
	}
	return spec, nil
}
