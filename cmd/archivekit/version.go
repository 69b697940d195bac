package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/infracollect/archivekit/pkg/archive/backends"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// Build information populated at init() from debug.ReadBuildInfo().
var (
	Version   = "unknown"
	GoVersion = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
	Modified  bool
)

func init() {
	parseBuildInfo()
}

func parseBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	Version = info.Main.Version
	GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			Commit = setting.Value
		case "vcs.time":
			BuildTime = setting.Value
		case "vcs.modified":
			Modified = setting.Value == "true"
		}
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information and the available backends",
	Action: func(ctx context.Context, command *cli.Command) error {
		w := command.Root().Writer
		fmt.Fprintf(w, "version: %s\n", Version)
		fmt.Fprintf(w, "go: %s\n", GoVersion)
		if Commit != "unknown" {
			if Modified {
				fmt.Fprintf(w, "commit: %s (dirty)\n", Commit)
			} else {
				fmt.Fprintf(w, "commit: %s\n", Commit)
			}
		}
		if BuildTime != "unknown" {
			fmt.Fprintf(w, "built: %s\n", BuildTime)
		}

		available := lo.Map(backends.NewRegistry().Available(), func(b archive.Backend, _ int) string {
			if b == backends.Default {
				return string(b) + " (default)"
			}
			return string(b)
		})
		fmt.Fprintf(w, "backends: %s\n", strings.Join(available, ", "))
		return nil
	},
}
