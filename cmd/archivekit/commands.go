package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/infracollect/archivekit/internal/runner"
	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var errTerminalOutput = errors.New("refusing to write binary output to a terminal, redirect stdout or use --force")

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List the entries of a container",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "archive",
			UsageText: "The zip container to list",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		path := command.StringArg("archive")
		if path == "" {
			return fmt.Errorf("no archive provided")
		}

		r, _, err := newRunner(getLogger(ctx), afero.NewOsFs(), command)
		if err != nil {
			return err
		}

		keys, err := r.List(path)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(command.Root().Writer, key)
		}
		return nil
	},
}

var catCommand = &cli.Command{
	Name:      "cat",
	Usage:     "Print the content of an entry",
	ArgsUsage: "<archive> <key>",
	Action: func(ctx context.Context, command *cli.Command) error {
		if command.Args().Len() != 2 {
			return fmt.Errorf("expected an archive and an entry key, got %d argument(s)", command.Args().Len())
		}

		r, _, err := newRunner(getLogger(ctx), afero.NewOsFs(), command)
		if err != nil {
			return err
		}

		return r.Cat(command.Args().Get(0), command.Args().Get(1), command.Root().Writer)
	},
}

var addCommand = &cli.Command{
	Name:      "add",
	Usage:     "Add files to a container, creating it if needed",
	ArgsUsage: "<archive> <file>...",
	Flags:     compressionFlags,
	Action: func(ctx context.Context, command *cli.Command) error {
		if command.Args().Len() < 2 {
			return fmt.Errorf("expected an archive and at least one file")
		}

		fs := afero.NewOsFs()
		r, _, err := newRunner(getLogger(ctx), fs, command)
		if err != nil {
			return err
		}

		return r.Add(ctx, command.Args().First(), fs, command.Args().Tail())
	},
}

var exportCommand = &cli.Command{
	Name:      "export",
	Usage:     "Export entries to stdout, a folder or S3",
	ArgsUsage: "<archive> [pattern]...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Export to this folder, overrides the configured destination",
		},
		&cli.StringFlag{
			Name:  "bundle",
			Usage: "Pack the entries into a single tar, tar.gz or tar.zst",
		},
		&cli.StringSliceFlag{
			Name:  "allowed-env",
			Usage: "Environment variables allowed in the export configuration (can be repeated)",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Write to stdout even when it is a terminal",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)
		if command.Args().Len() < 1 {
			return fmt.Errorf("no archive provided")
		}
		path := command.Args().First()

		fs := afero.NewOsFs()
		r, cfg, err := newRunner(logger, fs, command)
		if err != nil {
			return err
		}

		spec, err := exportSpec(cfg, command)
		if err != nil {
			return err
		}

		variables, err := runner.BuildVariables(path, time.Now(), command.StringSlice("allowed-env"))
		if err != nil {
			return fmt.Errorf("failed to build variables: %w", err)
		}
		if err := runner.ExpandTemplates(spec, variables); err != nil {
			return fmt.Errorf("failed to expand templates: %w", err)
		}

		sink, err := runner.BuildSink(ctx, fs, command.Root().Writer, spec, variables["ARCHIVE_NAME"])
		if err != nil {
			return fmt.Errorf("failed to build sink: %w", err)
		}
		if runner.IsStream(sink) && spec != nil && spec.Bundle != "" && isInteractive(ctx) && !command.Bool("force") {
			return errTerminalOutput
		}

		n, err := r.Export(ctx, path, sink, command.Args().Tail())
		if err != nil {
			return err
		}
		logger.Debug("export done", zap.Int("entries", n), zap.String("sink", sink.Name()))
		return nil
	},
}

var repackCommand = &cli.Command{
	Name:      "repack",
	Usage:     "Copy every entry into a new container with another backend or compression",
	ArgsUsage: "<source> <destination>",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Backend reading the source container (default: the configured backend)",
		},
	}, compressionFlags...),
	Action: func(ctx context.Context, command *cli.Command) error {
		if command.Args().Len() != 2 {
			return fmt.Errorf("expected a source and a destination, got %d argument(s)", command.Args().Len())
		}

		r, _, err := newRunner(getLogger(ctx), afero.NewOsFs(), command)
		if err != nil {
			return err
		}

		from := r.Backend()
		if command.IsSet("from") {
			from = archive.Backend(command.String("from"))
		}

		n, err := r.Repack(ctx, command.Args().Get(0), from, command.Args().Get(1))
		if err != nil {
			return err
		}
		fmt.Fprintf(command.Root().Writer, "repacked %d entries into %s\n", n, command.Args().Get(1))
		return nil
	},
}
