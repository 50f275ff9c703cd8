// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package mrt

import (
	"encoding/binary"
	"net/netip"

	"github.com/osrg/gobgp/v3/pkg/packet/mrt"
)

// AppendRecord appends a raw MRT record with the provided type,
// subtype and body. For tests.
func AppendRecord(out []byte, mrtType uint16, subType uint16, body []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, 1580227200) // timestamp
	out = binary.BigEndian.AppendUint16(out, mrtType)
	out = binary.BigEndian.AppendUint16(out, subType)
	out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

// AppendPeerIndexTable appends a PEER_INDEX_TABLE record with the
// provided peers (IPv4 or IPv6, 4-byte ASNs). For tests.
func AppendPeerIndexTable(out []byte, viewName string, peers ...netip.Addr) []byte {
	body := binary.BigEndian.AppendUint32(nil, 0x0a000001) // collector ID
	body = binary.BigEndian.AppendUint16(body, uint16(len(viewName)))
	body = append(body, viewName...)
	body = binary.BigEndian.AppendUint16(body, uint16(len(peers)))
	for i, peer := range peers {
		peerType := uint8(2) // 4-byte ASN
		if peer.Is6() {
			peerType |= 1
		}
		body = append(body, peerType)
		body = binary.BigEndian.AppendUint32(body, 0xc0000200+uint32(i)) // BGP ID
		body = append(body, peer.AsSlice()...)
		body = binary.BigEndian.AppendUint32(body, 65000+uint32(i))
	}
	return AppendRecord(out, uint16(mrt.TABLE_DUMPv2), uint16(mrt.PEER_INDEX_TABLE), body)
}

// TestRIBEntry is the input for one RIB entry in AppendRIB.
type TestRIBEntry struct {
	PeerIndex  uint16
	Attributes []byte
}

// AppendRIB appends a RIB_IPV4_UNICAST record. For tests.
func AppendRIB(out []byte, sequence uint32, prefix netip.Prefix, entries ...TestRIBEntry) []byte {
	body := binary.BigEndian.AppendUint32(nil, sequence)
	bits := prefix.Bits()
	body = append(body, uint8(bits))
	body = append(body, prefix.Addr().AsSlice()[:(bits+7)/8]...)
	body = binary.BigEndian.AppendUint16(body, uint16(len(entries)))
	for _, entry := range entries {
		body = binary.BigEndian.AppendUint16(body, entry.PeerIndex)
		body = binary.BigEndian.AppendUint32(body, 1580220000) // originated
		body = binary.BigEndian.AppendUint16(body, uint16(len(entry.Attributes)))
		body = append(body, entry.Attributes...)
	}
	return AppendRecord(out, uint16(mrt.TABLE_DUMPv2), uint16(mrt.RIB_IPV4_UNICAST), body)
}

// AppendASPathAttribute appends a minimal path-attribute blob
// carrying a single AS_SEQUENCE with the provided ASNs. For tests.
func AppendASPathAttribute(out []byte, asns ...uint32) []byte {
	value := []byte{2, uint8(len(asns))}
	for _, asn := range asns {
		value = binary.BigEndian.AppendUint32(value, asn)
	}
	out = append(out, 0x40, 2, uint8(len(value)))
	return append(out, value...)
}
