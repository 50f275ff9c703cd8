// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package core glues the pipeline together: fetch the snapshot,
// stream its MRT records, decode AS paths, aggregate them per
// address, analyze the result and hand it to the export component.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"gopkg.in/tomb.v2"

	"asbottleneck/bgp"
	"asbottleneck/bottleneck"
	"asbottleneck/common/daemon"
	"asbottleneck/common/reporter"
	"asbottleneck/export"
	"asbottleneck/fetch"
	"asbottleneck/mrt"
	"asbottleneck/rib"
)

// Component represents the core component.
type Component struct {
	r       *reporter.Reporter
	d       *Dependencies
	t       tomb.Tomb
	config  Configuration
	metrics metrics

	errLogger reporter.Logger
}

// Dependencies define the dependencies of the core component.
type Dependencies struct {
	Daemon daemon.Component
	Fetch  *fetch.Component
	Export *export.Component
	Clock  clock.Clock
}

// New creates a new core component from its configuration.
func New(r *reporter.Reporter, configuration Configuration, dependencies Dependencies) (*Component, error) {
	if dependencies.Clock == nil {
		dependencies.Clock = clock.New()
	}
	c := Component{
		r:      r,
		d:      &dependencies,
		config: configuration,

		// Decode errors can come by the million on a damaged
		// dump, rate-limit their logging.
		errLogger: r.Sample(reporter.BurstSampler(time.Minute, 10)),
	}
	c.d.Daemon.Track(&c.t, "core")
	c.initMetrics()
	return &c, nil
}

// Start starts the core component. The pipeline runs once: when it
// finishes, the daemon is asked to terminate.
func (c *Component) Start() error {
	c.r.Info().Msg("starting core component")
	c.t.Go(func() error {
		result, err := c.Run(c.t.Context(nil))
		if err != nil {
			return err
		}
		if err := c.d.Export.Write(result); err != nil {
			return fmt.Errorf("unable to write results: %w", err)
		}
		c.d.Daemon.Terminate()
		return nil
	})
	return nil
}

// Stop stops the core component.
func (c *Component) Stop() error {
	defer c.r.Info().Msg("core component stopped")
	c.r.Info().Msg("stopping core component")
	c.t.Kill(nil)
	return c.t.Wait()
}

// Run executes the whole pipeline once and returns the bottleneck AS
// for each address observed in the snapshot.
func (c *Component) Run(ctx context.Context) (map[rib.Address]uint32, error) {
	start := c.d.Clock.Now()

	stream, err := c.d.Fetch.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot: %w", err)
	}
	defer stream.Close()

	table := rib.New()
	if err := c.aggregate(ctx, mrt.NewReader(stream), table); err != nil {
		return nil, err
	}
	c.metrics.peers.Set(float64(table.PeerCount()))
	c.metrics.prefixes.Set(float64(table.Len()))

	result := bottleneck.AnalyzeParallel(table.Paths(), c.config.Workers)

	c.r.Info().
		Int("peers", table.PeerCount()).
		Int("prefixes", table.Len()).
		Int("paths", table.PathCount()).
		Dur("elapsed", c.d.Clock.Since(start)).
		Msg("snapshot analyzed")
	return result, nil
}

// aggregate streams MRT records into the RIB. Per-entry decode
// errors are counted and skipped, anything else is fatal.
func (c *Component) aggregate(ctx context.Context, reader *mrt.Reader, table *rib.RIB) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to read snapshot: %w", err)
		}
		switch record := record.(type) {
		case *mrt.PeerIndexTable:
			c.metrics.records.WithLabelValues("peer-index-table").Inc()
			for _, peer := range record.Peers {
				table.AddPeer(peer)
			}
		case *mrt.RIB:
			c.metrics.records.WithLabelValues("rib-ipv4-unicast").Inc()
			for _, entry := range record.Entries {
				path, err := bgp.DecodeASPath(entry.Attributes)
				if err != nil {
					c.metrics.decodeErrors.WithLabelValues(err.Error()).Inc()
					c.errLogger.Warn().
						Err(err).
						Stringer("prefix", record.Prefix).
						Uint16("peer-index", entry.PeerIndex).
						Msg("cannot decode AS path, skipping entry")
					continue
				}
				if _, err := table.Add(int(entry.PeerIndex), uint8(record.Prefix.Bits()), path.Dedup()); err != nil {
					return fmt.Errorf("inconsistent snapshot: %w", err)
				}
				c.metrics.routes.Inc()
			}
		}
	}
}
