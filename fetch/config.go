// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package fetch

import (
	"time"
)

// Configuration describes the configuration for the fetch component.
type Configuration struct {
	// URL is the location of the MRT snapshot to download. RIS
	// collectors serve them gzipped at a stable location.
	URL string `validate:"omitempty,url"`
	// Path is a local MRT snapshot to read instead of downloading
	// one. Exactly one of URL and Path must be set.
	Path string
	// Timeout bounds the whole download, headers included.
	Timeout time.Duration `validate:"min=1s"`
	// Retries is the number of times a failed download is retried
	// before giving up.
	Retries int `validate:"min=0"`
}

// DefaultConfiguration represents the default configuration for the
// fetch component.
func DefaultConfiguration() Configuration {
	return Configuration{
		URL:     "https://data.ris.ripe.net/rrc01/latest-bview.gz",
		Timeout: 30 * time.Minute,
		Retries: 2,
	}
}
