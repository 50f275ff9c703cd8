// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package bottleneck

import (
	"net/netip"

	"github.com/gaissmai/bart"

	"asbottleneck/rib"
)

// Table answers longest-prefix-match lookups of the bottleneck AS for
// arbitrary IPs. Addresses without a prefix length are skipped, they
// cannot participate in a prefix match.
type Table struct {
	tree *bart.Table[uint32]
	size int
}

// NewTable builds a lookup table from an analysis result.
func NewTable(result map[rib.Address]uint32) *Table {
	tree := &bart.Table[uint32]{}
	size := 0
	for addr, asn := range result {
		prefix, ok := addr.Prefix()
		if !ok {
			continue
		}
		tree.Insert(prefix.Masked(), asn)
		size++
	}
	return &Table{tree: tree, size: size}
}

// Lookup returns the bottleneck AS for the most specific prefix
// containing the IP.
func (t *Table) Lookup(ip netip.Addr) (uint32, bool) {
	return t.tree.Lookup(ip)
}

// Len returns the number of prefixes in the table.
func (t *Table) Len() int {
	return t.size
}
