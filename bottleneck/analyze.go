// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package bottleneck locates, for each address, the AS nearest the
// origin that every observed path is guaranteed to traverse.
package bottleneck

import (
	"fmt"
	"sort"
	"sync"

	"asbottleneck/bgp"
	"asbottleneck/rib"
)

// Analyze computes the bottleneck AS for each address. The bottleneck
// is the last AS of the longest common leading run of the paths
// observed for the address. It is a pure function of its input.
func Analyze(paths map[rib.Address][]bgp.ASPath) map[rib.Address]uint32 {
	return AnalyzeParallel(paths, 1)
}

// AnalyzeParallel is Analyze with the addresses sharded over several
// workers. Each address is independent and each worker writes to its
// own slice of the result, so no locking is involved.
func AnalyzeParallel(paths map[rib.Address][]bgp.ASPath, workers int) map[rib.Address]uint32 {
	if workers < 1 {
		workers = 1
	}
	addresses := make([]rib.Address, 0, len(paths))
	for addr := range paths {
		addresses = append(addresses, addr)
	}
	results := make([]uint32, len(addresses))

	var wg sync.WaitGroup
	chunk := (len(addresses) + workers - 1) / workers
	for start := 0; start < len(addresses); start += chunk {
		end := min(start+chunk, len(addresses))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i] = bottleneckOf(addresses[i], paths[addresses[i]])
			}
		}(start, end)
	}
	wg.Wait()

	out := make(map[rib.Address]uint32, len(addresses))
	for i, addr := range addresses {
		out[addr] = results[i]
	}
	return out
}

// bottleneckOf returns the last AS of the common leading run of the
// paths for one address.
func bottleneckOf(addr rib.Address, paths []bgp.ASPath) uint32 {
	run := commonRun(addr, paths)
	if len(run) == 0 {
		// Cannot happen as long as path sets are built from
		// non-empty decoded paths.
		panic(fmt.Sprintf("no common AS for %s", addr))
	}
	return run[len(run)-1]
}

// commonRun computes the longest common leading run of the paths for
// one address. Paths are scanned forward from their first element,
// shortest path first; the run is truncated at the first index where
// a path disagrees.
func commonRun(addr rib.Address, paths []bgp.ASPath) bgp.ASPath {
	sorted := make([]bgp.ASPath, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) < len(sorted[j])
	})

	run := append(bgp.ASPath{}, sorted[0]...)
	for _, path := range sorted[1:] {
		// Every address belongs to a single first-hop AS. A
		// mismatch means the aggregation upstream is broken,
		// not that the input is malformed.
		if len(run) > 0 && run[0] != path[0] {
			panic(fmt.Sprintf("paths for %s disagree on first AS (%d != %d)",
				addr, run[0], path[0]))
		}
		for i := 1; i < len(run); i++ {
			if path[i] != run[i] {
				run = run[:i]
				break
			}
		}
	}
	return run
}
