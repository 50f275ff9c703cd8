// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package bottleneck

import (
	"net/netip"
	"testing"

	"asbottleneck/bgp"
	"asbottleneck/common/helpers"
	"asbottleneck/rib"
)

func fixturePaths() map[rib.Address][]bgp.ASPath {
	return map[rib.Address][]bgp.ASPath{
		rib.MustParseAddress("195.66.225.77/0"): {
			{64271, 62240, 3356},
			{64271, 62240, 174},
		},
		rib.MustParseAddress("5.57.81.186/24"): {
			{6894, 13335, 38803, 56203},
			{6894, 13335, 4826, 174},
		},
	}
}

func TestAnalyze(t *testing.T) {
	got := Analyze(fixturePaths())
	expected := map[rib.Address]uint32{
		rib.MustParseAddress("195.66.225.77/0"): 62240,
		rib.MustParseAddress("5.57.81.186/24"):  13335,
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("Analyze() (-got, +want):\n%s", diff)
	}

	// Idempotence: analyzing the same map twice yields the same result.
	again := Analyze(fixturePaths())
	if diff := helpers.Diff(again, got); diff != "" {
		t.Fatalf("Analyze() not idempotent (-second, +first):\n%s", diff)
	}
}

func TestAnalyzeSinglePath(t *testing.T) {
	// A lone path is its own common run: the bottleneck is its
	// last element.
	got := Analyze(map[rib.Address][]bgp.ASPath{
		rib.MustParseAddress("192.0.2.1/24"): {{64271, 62240, 3356}},
	})
	expected := map[rib.Address]uint32{
		rib.MustParseAddress("192.0.2.1/24"): 3356,
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("Analyze() (-got, +want):\n%s", diff)
	}
}

func TestAnalyzeOnlyFirstHopShared(t *testing.T) {
	got := Analyze(map[rib.Address][]bgp.ASPath{
		rib.MustParseAddress("192.0.2.1/24"): {
			{64271, 1, 2},
			{64271, 3, 4},
		},
	})
	expected := map[rib.Address]uint32{
		rib.MustParseAddress("192.0.2.1/24"): 64271,
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("Analyze() (-got, +want):\n%s", diff)
	}
}

func TestAnalyzeFirstHopMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Analyze() should panic on a first-hop mismatch")
		}
	}()
	Analyze(map[rib.Address][]bgp.ASPath{
		rib.MustParseAddress("192.0.2.1/24"): {
			{64271, 62240},
			{64272, 62240},
		},
	})
}

func TestAnalyzeParallel(t *testing.T) {
	paths := fixturePaths()
	for i := uint32(0); i < 100; i++ {
		addr := rib.NewAddress(netip.AddrFrom4([4]byte{10, byte(i >> 8), byte(i), 0})).WithPrefixLen(24)
		paths[addr] = []bgp.ASPath{
			{65000, 65001 + i, 65002},
			{65000, 65001 + i, 65003, 65004},
		}
	}
	sequential := Analyze(paths)
	for _, workers := range []int{0, 1, 2, 7, 200} {
		got := AnalyzeParallel(paths, workers)
		if diff := helpers.Diff(got, sequential); diff != "" {
			t.Fatalf("AnalyzeParallel(%d) (-got, +want):\n%s", workers, diff)
		}
	}
}

func TestTable(t *testing.T) {
	table := NewTable(map[rib.Address]uint32{
		rib.MustParseAddress("5.57.81.186/24"):  13335,
		rib.MustParseAddress("5.57.80.0/20"):    6894,
		rib.MustParseAddress("195.66.225.77/0"): 62240,
		rib.MustParseAddress("192.0.2.1"):       65000, // no prefix length, skipped
	})
	if table.Len() != 3 {
		t.Errorf("Len() == %d, expected 3", table.Len())
	}

	cases := []struct {
		IP       string
		Expected uint32
		Found    bool
	}{
		{"5.57.81.42", 13335, true},   // most specific match wins
		{"5.57.82.42", 6894, true},    // covered by the /20 only
		{"203.0.113.7", 62240, true},  // default route
		{"2001:db8::1", 0, false},     // no IPv6 prefixes inserted
	}
	for _, tc := range cases {
		asn, found := table.Lookup(netip.MustParseAddr(tc.IP))
		if found != tc.Found || asn != tc.Expected {
			t.Errorf("Lookup(%s) == %d, %v, expected %d, %v",
				tc.IP, asn, found, tc.Expected, tc.Found)
		}
	}
}
