// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"fmt"
	"net/netip"

	"github.com/spf13/cobra"

	"asbottleneck/bottleneck"
	"asbottleneck/common/daemon"
	"asbottleneck/common/helpers"
	"asbottleneck/common/reporter"
	"asbottleneck/core"
	"asbottleneck/fetch"
)

// LookupOptions stores the command-line option values for the lookup
// command.
var LookupOptions struct {
	ConfigRelatedOptions
}

var lookupCmd = &cobra.Command{
	Use:   "lookup config.yaml ip [ip...]",
	Short: "Look up the bottleneck AS for IP addresses",
	Long: `Analyze a routing snapshot like the analyze command does, then answer
longest-prefix-match queries for the provided IP addresses instead of
exporting the whole result.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ips := make([]netip.Addr, 0, len(args)-1)
		for _, arg := range args[1:] {
			ip, err := netip.ParseAddr(arg)
			if err != nil {
				return fmt.Errorf("invalid IP address %q: %w", arg, err)
			}
			ips = append(ips, ip)
		}

		config := AnalyzeConfiguration{}
		config.Reset()
		LookupOptions.Path = args[0]
		if err := LookupOptions.Parse(cmd.OutOrStdout(), "analyze", &config); err != nil {
			return err
		}

		r, err := reporter.New(config.Reporting)
		if err != nil {
			return fmt.Errorf("unable to initialize reporter: %w", err)
		}
		return lookupStart(cmd, r, config, ips)
	},
}

func init() {
	RootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolVarP(&LookupOptions.ConfigRelatedOptions.Dump, "dump", "D", false,
		"Dump configuration before starting")
}

func lookupStart(cmd *cobra.Command, r *reporter.Reporter, config AnalyzeConfiguration, ips []netip.Addr) error {
	if err := helpers.Validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	daemonComponent, err := daemon.New(r)
	if err != nil {
		return fmt.Errorf("unable to initialize daemon component: %w", err)
	}
	fetchComponent, err := fetch.New(r, config.Fetch)
	if err != nil {
		return fmt.Errorf("unable to initialize fetch component: %w", err)
	}
	coreComponent, err := core.New(r, config.Core, core.Dependencies{
		Daemon: daemonComponent,
		Fetch:  fetchComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize core component: %w", err)
	}

	result, err := coreComponent.Run(cmd.Context())
	if err != nil {
		return err
	}
	table := bottleneck.NewTable(result)
	for _, ip := range ips {
		if asn, ok := table.Lookup(ip); ok {
			cmd.Printf("%s %d\n", ip, asn)
		} else {
			cmd.Printf("%s no-match\n", ip)
		}
	}
	return nil
}
