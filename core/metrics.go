// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package core

import "asbottleneck/common/reporter"

type metrics struct {
	records      *reporter.CounterVec
	routes       reporter.Counter
	decodeErrors *reporter.CounterVec
	peers        reporter.Gauge
	prefixes     reporter.Gauge
}

// initMetrics initialize the metrics for the core component.
func (c *Component) initMetrics() {
	c.metrics.records = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "mrt_records_total",
			Help: "Number of processed MRT records.",
		},
		[]string{"type"},
	)
	c.metrics.routes = c.r.Counter(
		reporter.CounterOpts{
			Name: "routes_total",
			Help: "Number of RIB entries with a decoded AS path.",
		},
	)
	c.metrics.decodeErrors = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "decode_errors_total",
			Help: "Number of RIB entries skipped due to an attribute decode error.",
		},
		[]string{"error"},
	)
	c.metrics.peers = c.r.Gauge(
		reporter.GaugeOpts{
			Name: "peers",
			Help: "Number of peers in the peer index table.",
		},
	)
	c.metrics.prefixes = c.r.Gauge(
		reporter.GaugeOpts{
			Name: "prefixes",
			Help: "Number of distinct addresses with at least one path.",
		},
	)
}
