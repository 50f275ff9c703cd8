// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package export writes bottleneck results to a file or to standard
// output, sorted by address to keep runs comparable.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"asbottleneck/common/reporter"
	"asbottleneck/rib"
)

// Component represents the export component.
type Component struct {
	r      *reporter.Reporter
	config Configuration

	written reporter.Counter
}

// New creates a new export component from its configuration.
func New(r *reporter.Reporter, configuration Configuration) (*Component, error) {
	c := Component{
		r:      r,
		config: configuration,
	}
	c.written = r.Counter(reporter.CounterOpts{
		Name: "written_total",
		Help: "Number of written results.",
	})
	return &c, nil
}

// Write writes the bottleneck map to the configured destination.
func (c *Component) Write(result map[rib.Address]uint32) error {
	var out io.Writer = os.Stdout
	if c.config.Path != "" {
		f, err := os.Create(c.config.Path)
		if err != nil {
			return fmt.Errorf("cannot create %q: %w", c.config.Path, err)
		}
		defer f.Close()
		out = f
	}
	if err := c.write(out, result); err != nil {
		return err
	}
	c.written.Add(float64(len(result)))
	c.r.Info().Int("results", len(result)).Str("format", c.config.Format).Msg("results written")
	return nil
}

func (c *Component) write(out io.Writer, result map[rib.Address]uint32) error {
	addresses := make([]rib.Address, 0, len(result))
	for addr := range result {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].Compare(addresses[j]) < 0
	})

	switch c.config.Format {
	case "json":
		ordered := make([]record, len(addresses))
		for i, addr := range addresses {
			ordered[i] = record{Address: addr.String(), ASN: result[addr]}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(ordered)
	case "csv":
		w := csv.NewWriter(out)
		for _, addr := range addresses {
			if err := w.Write([]string{addr.String(), strconv.FormatUint(uint64(result[addr]), 10)}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
	return fmt.Errorf("unknown format %q", c.config.Format)
}

type record struct {
	Address string `json:"address"`
	ASN     uint32 `json:"asn"`
}
