// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package mrt streams TABLE_DUMP_V2 records out of an MRT snapshot.
//
// Only the peer index table and IPv4 unicast RIB records are
// surfaced, everything else is skipped. RIB entries carry their path
// attributes as raw bytes: extracting the AS path from them is the
// job of the bgp package.
package mrt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/osrg/gobgp/v3/pkg/packet/mrt"
)

// Record is a decoded MRT record of interest.
type Record interface {
	record()
}

// PeerIndexTable lists the peers contributing to the snapshot. Peers
// are referenced by RIB entries through their position in this table.
type PeerIndexTable struct {
	CollectorID uint32
	ViewName    string
	Peers       []netip.Addr
}

func (*PeerIndexTable) record() {}

// RIB is one RIB_IPV4_UNICAST record: a prefix and the routes
// reported for it by the various peers.
type RIB struct {
	Sequence uint32
	Prefix   netip.Prefix
	Entries  []RIBEntry
}

func (*RIB) record() {}

// RIBEntry is one route towards the enclosing record's prefix, as
// reported by one peer. Attributes is the raw concatenation of the
// BGP path attributes.
type RIBEntry struct {
	PeerIndex    uint16
	OriginatedAt time.Time
	Attributes   []byte
}

// Reader decodes MRT records from a stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a reader decoding MRT records from the provided
// stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16)}
}

// Next returns the next record of interest, skipping everything
// else. It returns io.EOF once the stream is exhausted. Any
// truncation is an error: unlike a bad route attribute, a damaged
// container cannot be skipped over.
func (r *Reader) Next() (Record, error) {
	for {
		var header [12]byte
		if _, err := io.ReadFull(r.r, header[:]); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("cannot read MRT header: %w", err)
		}
		mrtType := mrt.MRTType(binary.BigEndian.Uint16(header[4:6]))
		subType := binary.BigEndian.Uint16(header[6:8])
		length := binary.BigEndian.Uint32(header[8:12])

		if mrtType != mrt.TABLE_DUMPv2 ||
			(subType != uint16(mrt.PEER_INDEX_TABLE) && subType != uint16(mrt.RIB_IPV4_UNICAST)) {
			if _, err := r.r.Discard(int(length)); err != nil {
				return nil, fmt.Errorf("cannot skip MRT record: %w", err)
			}
			continue
		}

		body := make([]byte, length)
		if _, err := io.ReadFull(r.r, body); err != nil {
			return nil, fmt.Errorf("cannot read MRT record body: %w", err)
		}
		switch mrt.MRTSubTypeTableDumpv2(subType) {
		case mrt.PEER_INDEX_TABLE:
			return parsePeerIndexTable(body)
		case mrt.RIB_IPV4_UNICAST:
			return parseRIB(body)
		}
	}
}

// cursor parses big-endian fields out of a record body.
type cursor struct {
	buf []byte
}

func (c *cursor) take(n int) ([]byte, error) {
	if len(c.buf) < n {
		return nil, fmt.Errorf("truncated MRT record (%d bytes missing)", n-len(c.buf))
	}
	out := c.buf[:n]
	c.buf = c.buf[n:]
	return out, nil
}

func (c *cursor) uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func parsePeerIndexTable(body []byte) (*PeerIndexTable, error) {
	c := cursor{body}
	table := PeerIndexTable{}
	var err error
	if table.CollectorID, err = c.uint32(); err != nil {
		return nil, err
	}
	nameLength, err := c.uint16()
	if err != nil {
		return nil, err
	}
	name, err := c.take(int(nameLength))
	if err != nil {
		return nil, err
	}
	table.ViewName = string(name)
	count, err := c.uint16()
	if err != nil {
		return nil, err
	}
	table.Peers = make([]netip.Addr, count)
	for i := range table.Peers {
		peerType, err := c.uint8()
		if err != nil {
			return nil, err
		}
		if _, err := c.uint32(); err != nil { // BGP ID
			return nil, err
		}
		ipLength := 4
		if peerType&1 != 0 { // IPv6 peer
			ipLength = 16
		}
		ip, err := c.take(ipLength)
		if err != nil {
			return nil, err
		}
		table.Peers[i], _ = netip.AddrFromSlice(ip)
		asnLength := 2
		if peerType&2 != 0 { // 4-byte ASN
			asnLength = 4
		}
		if _, err := c.take(asnLength); err != nil {
			return nil, err
		}
	}
	return &table, nil
}

func parseRIB(body []byte) (*RIB, error) {
	c := cursor{body}
	rib := RIB{}
	var err error
	if rib.Sequence, err = c.uint32(); err != nil {
		return nil, err
	}
	prefixLength, err := c.uint8()
	if err != nil {
		return nil, err
	}
	if prefixLength > 32 {
		return nil, fmt.Errorf("invalid IPv4 prefix length %d", prefixLength)
	}
	prefixBytes, err := c.take(int(prefixLength+7) / 8)
	if err != nil {
		return nil, err
	}
	var ip [4]byte
	copy(ip[:], prefixBytes)
	rib.Prefix = netip.PrefixFrom(netip.AddrFrom4(ip), int(prefixLength))

	count, err := c.uint16()
	if err != nil {
		return nil, err
	}
	rib.Entries = make([]RIBEntry, count)
	for i := range rib.Entries {
		if rib.Entries[i].PeerIndex, err = c.uint16(); err != nil {
			return nil, err
		}
		originated, err := c.uint32()
		if err != nil {
			return nil, err
		}
		rib.Entries[i].OriginatedAt = time.Unix(int64(originated), 0).UTC()
		attributesLength, err := c.uint16()
		if err != nil {
			return nil, err
		}
		if rib.Entries[i].Attributes, err = c.take(int(attributesLength)); err != nil {
			return nil, err
		}
	}
	return &rib, nil
}
