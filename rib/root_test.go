// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package rib

import (
	"net/netip"
	"sort"
	"testing"

	"asbottleneck/bgp"
	"asbottleneck/common/helpers"
)

func sortPaths(paths map[Address][]bgp.ASPath) {
	for _, set := range paths {
		sort.Slice(set, func(i, j int) bool {
			for k := range set[i] {
				if k >= len(set[j]) || set[i][k] > set[j][k] {
					return false
				}
				if set[i][k] < set[j][k] {
					return true
				}
			}
			return len(set[i]) < len(set[j])
		})
	}
}

func TestAdd(t *testing.T) {
	r := New()
	r.AddPeer(netip.MustParseAddr("195.66.225.77"))
	r.AddPeer(netip.MustParseAddr("5.57.81.186"))
	if r.PeerCount() != 2 {
		t.Fatalf("PeerCount() == %d, expected 2", r.PeerCount())
	}

	steps := []struct {
		PeerIndex int
		PrefixLen uint8
		Path      bgp.ASPath
		Inserted  bool
	}{
		{0, 0, bgp.ASPath{64271, 62240, 3356}, true},
		{0, 0, bgp.ASPath{64271, 62240, 174}, true},
		{0, 0, bgp.ASPath{64271, 62240, 174}, false}, // duplicate across entries
		{1, 24, bgp.ASPath{6894, 13335, 38803, 56203}, true},
		{1, 24, bgp.ASPath{6894, 13335, 4826, 174}, true},
		{1, 22, bgp.ASPath{6894, 13335}, true}, // same peer, other prefix length
	}
	for _, step := range steps {
		inserted, err := r.Add(step.PeerIndex, step.PrefixLen, step.Path)
		if err != nil {
			t.Fatalf("Add(%d, %d) error:\n%+v", step.PeerIndex, step.PrefixLen, err)
		}
		if inserted != step.Inserted {
			t.Errorf("Add(%d, %d, %v) == %v, expected %v",
				step.PeerIndex, step.PrefixLen, step.Path, inserted, step.Inserted)
		}
	}

	if r.Len() != 3 {
		t.Errorf("Len() == %d, expected 3", r.Len())
	}
	if r.PathCount() != 5 {
		t.Errorf("PathCount() == %d, expected 5", r.PathCount())
	}

	got := r.Paths()
	sortPaths(got)
	expected := map[Address][]bgp.ASPath{
		MustParseAddress("195.66.225.77/0"): {
			{64271, 62240, 174},
			{64271, 62240, 3356},
		},
		MustParseAddress("5.57.81.186/24"): {
			{6894, 13335, 4826, 174},
			{6894, 13335, 38803, 56203},
		},
		MustParseAddress("5.57.81.186/22"): {
			{6894, 13335},
		},
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("Paths() (-got, +want):\n%s", diff)
	}
}

func TestAddUnknownPeer(t *testing.T) {
	r := New()
	r.AddPeer(netip.MustParseAddr("192.0.2.1"))
	if _, err := r.Add(1, 24, bgp.ASPath{65000}); err == nil {
		t.Fatal("Add() with out-of-range peer index should error")
	}
	if _, err := r.Add(-1, 24, bgp.ASPath{65000}); err == nil {
		t.Fatal("Add() with negative peer index should error")
	}
}

func TestAddress(t *testing.T) {
	addr := NewAddress(netip.MustParseAddr("195.66.225.77"))
	if got := addr.String(); got != "195.66.225.77" {
		t.Errorf("String() == %q, expected %q", got, "195.66.225.77")
	}
	if _, ok := addr.PrefixLen(); ok {
		t.Error("PrefixLen() should not report a prefix length")
	}
	if _, ok := addr.Prefix(); ok {
		t.Error("Prefix() should not report a prefix")
	}

	masked := addr.WithPrefixLen(0)
	if got := masked.String(); got != "195.66.225.77/0" {
		t.Errorf("String() == %q, expected %q", got, "195.66.225.77/0")
	}
	if bits, ok := masked.PrefixLen(); !ok || bits != 0 {
		t.Errorf("PrefixLen() == %d, %v, expected 0, true", bits, ok)
	}
	if masked == addr {
		t.Error("an address with a prefix length should differ from one without")
	}

	parsed, err := ParseAddress("195.66.225.77/0")
	if err != nil {
		t.Fatalf("ParseAddress() error:\n%+v", err)
	}
	if parsed != masked {
		t.Errorf("ParseAddress() == %v, expected %v", parsed, masked)
	}
	if _, err := ParseAddress("195.66.225.77/33"); err == nil {
		t.Error("ParseAddress() should reject out-of-range prefix length")
	}
	if _, err := ParseAddress("not-an-ip"); err == nil {
		t.Error("ParseAddress() should reject invalid IPs")
	}

	prefix, ok := masked.Prefix()
	if !ok {
		t.Fatal("Prefix() should report a prefix")
	}
	if expected := netip.PrefixFrom(netip.MustParseAddr("195.66.225.77"), 0); prefix != expected {
		t.Errorf("Prefix() == %v, expected %v", prefix, expected)
	}
}
