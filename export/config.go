// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package export

// Configuration describes the configuration for the export component.
type Configuration struct {
	// Path is the file results are written to. Empty means
	// standard output.
	Path string
	// Format selects the output format.
	Format string `validate:"oneof=csv json"`
}

// DefaultConfiguration represents the default configuration for the
// export component.
func DefaultConfiguration() Configuration {
	return Configuration{
		Format: "csv",
	}
}
