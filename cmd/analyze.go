// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"asbottleneck/common/daemon"
	"asbottleneck/common/helpers"
	"asbottleneck/common/reporter"
	"asbottleneck/core"
	"asbottleneck/export"
	"asbottleneck/fetch"
)

// AnalyzeConfiguration represents the configuration file for the analyze command.
type AnalyzeConfiguration struct {
	Reporting reporter.Configuration
	Fetch     fetch.Configuration
	Core      core.Configuration
	Export    export.Configuration
}

// Reset resets the configuration for the analyze command to its default value.
func (c *AnalyzeConfiguration) Reset() {
	*c = AnalyzeConfiguration{
		Reporting: reporter.DefaultConfiguration(),
		Fetch:     fetch.DefaultConfiguration(),
		Core:      core.DefaultConfiguration(),
		Export:    export.DefaultConfiguration(),
	}
}

type analyzeOptions struct {
	ConfigRelatedOptions
	CheckMode bool
}

// AnalyzeOptions stores the command-line option values for the
// analyze command.
var AnalyzeOptions analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze config.yaml",
	Short: "Analyze a routing snapshot",
	Long: `Fetch a full-view BGP routing snapshot in MRT format, compute the
bottleneck AS for each observed address and export the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := AnalyzeConfiguration{}
		config.Reset()
		AnalyzeOptions.Path = args[0]
		if err := AnalyzeOptions.Parse(cmd.OutOrStdout(), "analyze", &config); err != nil {
			return err
		}

		r, err := reporter.New(config.Reporting)
		if err != nil {
			return fmt.Errorf("unable to initialize reporter: %w", err)
		}
		return analyzeStart(r, config, AnalyzeOptions.CheckMode)
	},
}

func init() {
	RootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&AnalyzeOptions.ConfigRelatedOptions.Dump, "dump", "D", false,
		"Dump configuration before starting")
	analyzeCmd.Flags().BoolVarP(&AnalyzeOptions.CheckMode, "check", "C", false,
		"Check configuration, but does not start")
}

func analyzeStart(r *reporter.Reporter, config AnalyzeConfiguration, checkOnly bool) error {
	if err := helpers.Validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize the various components
	daemonComponent, err := daemon.New(r)
	if err != nil {
		return fmt.Errorf("unable to initialize daemon component: %w", err)
	}
	fetchComponent, err := fetch.New(r, config.Fetch)
	if err != nil {
		return fmt.Errorf("unable to initialize fetch component: %w", err)
	}
	exportComponent, err := export.New(r, config.Export)
	if err != nil {
		return fmt.Errorf("unable to initialize export component: %w", err)
	}
	coreComponent, err := core.New(r, config.Core, core.Dependencies{
		Daemon: daemonComponent,
		Fetch:  fetchComponent,
		Export: exportComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize core component: %w", err)
	}

	versionMetrics(r)

	// If we only asked for a check, stop here.
	if checkOnly {
		return nil
	}

	// Start all the components.
	components := []interface{}{
		fetchComponent,
		exportComponent,
		coreComponent,
	}
	return StartStopComponents(r, daemonComponent, components)
}
