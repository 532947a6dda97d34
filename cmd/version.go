package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Version returns a `version` command printing the commit the binary of name is built from.
func Version(name string) *cobra.Command {
	name = strings.TrimSpace(name)

	short := "Print version"
	if name != "" {
		short = "Print " + name + " version"
	}

	return &cobra.Command{
		Use:                   "version",
		Short:                 short,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			info := readBuildInfo()

			prefix := "version"
			if name != "" {
				prefix = name + " version"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s from %s\n", prefix, info.hash, info.time)
		},
	}
}

type buildInfo struct {
	hash string
	time string
}

// readBuildInfo returns the commit of the binary. Binaries built by `go run`, `go test`,
// or from uncommitted changes report @latest and the current time instead.
func readBuildInfo() buildInfo {
	var (
		info     buildInfo
		modified bool
	)

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.hash = setting.Value
			case "vcs.time":
				info.time = setting.Value
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}
	}

	if modified || info.hash == "" {
		return buildInfo{hash: "@latest", time: time.Now().UTC().Format(time.RFC3339)}
	}

	return info
}
