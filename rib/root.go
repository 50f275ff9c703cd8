// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package rib accumulates the AS paths observed for each address.
//
// Peers from the MRT peer index table are kept in an arena indexed by
// their position. Each RIB entry then references its reporting peer
// by index and contributes one AS path to the set of the address
// formed from the peer IP and the entry prefix length.
package rib

import (
	"fmt"
	"net/netip"

	"asbottleneck/bgp"
)

// RIB holds the peer arena and the per-address path sets.
type RIB struct {
	peers    []netip.Addr
	prefixes map[Address]*pathSet
	paths    int
}

// New creates an empty RIB.
func New() *RIB {
	return &RIB{
		prefixes: make(map[Address]*pathSet),
	}
}

// AddPeer appends a peer to the peer arena. Peers are referenced by
// their insertion position.
func (r *RIB) AddPeer(ip netip.Addr) {
	r.peers = append(r.peers, ip)
}

// PeerCount returns the number of known peers.
func (r *RIB) PeerCount() int {
	return len(r.peers)
}

// Add inserts one AS path for the address built from the peer at the
// given index and the provided prefix length. It reports whether the
// path was not already present for the address. An out-of-range peer
// index is an error: the peer index table and the RIB entries come
// from the same snapshot and must agree.
func (r *RIB) Add(peerIndex int, prefixLen uint8, path bgp.ASPath) (bool, error) {
	if peerIndex < 0 || peerIndex >= len(r.peers) {
		return false, fmt.Errorf("peer index %d out of range (%d peers)", peerIndex, len(r.peers))
	}
	addr := NewAddress(r.peers[peerIndex]).WithPrefixLen(prefixLen)
	set, ok := r.prefixes[addr]
	if !ok {
		set = newPathSet()
		r.prefixes[addr] = set
	}
	if !set.insert(path) {
		return false, nil
	}
	r.paths++
	return true, nil
}

// Len returns the number of addresses in the RIB.
func (r *RIB) Len() int {
	return len(r.prefixes)
}

// PathCount returns the number of distinct paths across all addresses.
func (r *RIB) PathCount() int {
	return r.paths
}

// Paths returns the set of distinct AS paths for each address. The
// slices are in no particular order but never empty.
func (r *RIB) Paths() map[Address][]bgp.ASPath {
	result := make(map[Address][]bgp.ASPath, len(r.prefixes))
	for addr, set := range r.prefixes {
		result[addr] = set.all()
	}
	return result
}
