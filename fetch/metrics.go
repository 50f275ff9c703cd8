// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package fetch

import "asbottleneck/common/reporter"

type metrics struct {
	attempts *reporter.CounterVec
	failures *reporter.CounterVec
	bytes    reporter.Counter
}

// initMetrics initialize the metrics for the fetch component.
func (c *Component) initMetrics() {
	c.metrics.attempts = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "attempts_total",
			Help: "Number of attempts to open the snapshot.",
		},
		[]string{"source"},
	)
	c.metrics.failures = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "failures_total",
			Help: "Number of failed attempts to open the snapshot.",
		},
		[]string{"source"},
	)
	c.metrics.bytes = c.r.Counter(
		reporter.CounterOpts{
			Name: "bytes_total",
			Help: "Number of compressed bytes read from the snapshot.",
		},
	)
}
