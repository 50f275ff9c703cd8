// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"runtime"
	runtimedebug "runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"asbottleneck/common/reporter"
)

// Version contains the current version. It is overridden at build time.
var Version = "dev"

// BuildDate contains the build date. It is overridden at build time.
var BuildDate = "unknown"

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Long:  `Display version and build information about asbottleneck.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("asbottleneck %s\n", Version)
		cmd.Printf("  Built with: %s\n", runtime.Version())
		if info, ok := runtimedebug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if strings.HasPrefix(setting.Key, "GO") {
					cmd.Printf("  Build setting %s=%s\n", setting.Key, setting.Value)
				}
			}
		}
	},
}

func versionMetrics(r *reporter.Reporter) {
	r.GaugeVec(reporter.GaugeOpts{
		Name: "info",
		Help: "Asbottleneck build information",
	}, []string{"version", "compiler"}).
		WithLabelValues(Version, runtime.Version()).Set(1)
}
