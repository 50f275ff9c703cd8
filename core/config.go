// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"runtime"
)

// Configuration describes the configuration for the core component.
type Configuration struct {
	// Workers is the number of workers the analysis pass is
	// sharded over. Each worker owns a disjoint set of addresses.
	Workers int `validate:"min=1"`
}

// DefaultConfiguration represents the default configuration for the
// core component.
func DefaultConfiguration() Configuration {
	return Configuration{
		Workers: runtime.GOMAXPROCS(0),
	}
}
