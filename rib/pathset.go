// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package rib

import (
	"encoding/binary"
	"hash/maphash"

	"asbottleneck/bgp"
)

var pathHashSeed = maphash.MakeSeed()

// hashPath hashes an AS path. Collisions are handled by the path set
// buckets, the hash only needs to be well distributed.
func hashPath(path bgp.ASPath) uint64 {
	var h maphash.Hash
	h.SetSeed(pathHashSeed)
	var buf [4]byte
	for _, asn := range path {
		binary.BigEndian.PutUint32(buf[:], asn)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// pathSet is a set of distinct AS paths. Paths observed from several
// peers collapse into a single entry.
type pathSet struct {
	buckets map[uint64][]bgp.ASPath
	count   int
}

func newPathSet() *pathSet {
	return &pathSet{buckets: make(map[uint64][]bgp.ASPath)}
}

// insert adds a path to the set. It reports whether the path was not
// present before.
func (s *pathSet) insert(path bgp.ASPath) bool {
	hash := hashPath(path)
	for _, existing := range s.buckets[hash] {
		if existing.Equal(path) {
			return false
		}
	}
	s.buckets[hash] = append(s.buckets[hash], path)
	s.count++
	return true
}

// all returns the paths in the set, in no particular order.
func (s *pathSet) all() []bgp.ASPath {
	paths := make([]bgp.ASPath, 0, s.count)
	for _, bucket := range s.buckets {
		paths = append(paths, bucket...)
	}
	return paths
}
