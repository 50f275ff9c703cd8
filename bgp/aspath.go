// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package bgp decodes the AS path out of raw BGP path attributes.
//
// The input is the concatenation of path-attribute TLVs as found in a
// TABLE_DUMP_V2 RIB entry. Only the AS_PATH attribute is of interest,
// everything else is skipped. Attributes are never parsed further
// than needed to locate the first AS_SEQUENCE segment.
package bgp

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/osrg/gobgp/v3/pkg/packet/bgp"
)

// ASPath is the ordered sequence of AS numbers a route announcement
// has traversed, from the observing peer towards the origin.
type ASPath []uint32

var (
	// ErrNoAttributes is returned when the attribute blob is empty.
	ErrNoAttributes = errors.New("missing path attribute: all attributes")
	// ErrNoASPath is returned when the attributes do not contain an
	// AS_PATH attribute with an AS_SEQUENCE segment.
	ErrNoASPath = errors.New("missing path attribute: AS Path")
	// ErrTruncated is returned when a length field points past the
	// end of the attribute blob.
	ErrTruncated = errors.New("truncated path attributes")
)

// UnsupportedAttributeError is returned when hitting a path attribute
// type code we don't know how to skip.
type UnsupportedAttributeError struct {
	Code uint8
}

func (e UnsupportedAttributeError) Error() string {
	return fmt.Sprintf("unsupported path attribute type %d", e.Code)
}

// UnsupportedSegmentError is returned when an AS_PATH attribute
// carries an unknown segment type.
type UnsupportedSegmentError struct {
	Type uint8
}

func (e UnsupportedSegmentError) Error() string {
	return fmt.Sprintf("unsupported AS path segment type %d", e.Type)
}

// DecodeASPath extracts the AS path from a raw path-attribute blob.
// It scans the attributes in order and returns the content of the
// first AS_SEQUENCE segment found. AS_SET segments are skipped: they
// are unordered and useless to locate a bottleneck.
func DecodeASPath(data []byte) (ASPath, error) {
	if len(data) == 0 {
		return nil, ErrNoAttributes
	}
	for len(data) > 0 {
		if len(data) < 2 {
			return nil, ErrTruncated
		}
		flags := bgp.BGPAttrFlag(data[0])
		code := bgp.BGPAttrType(data[1])
		data = data[2:]
		var length int
		if flags&bgp.BGP_ATTR_FLAG_EXTENDED_LENGTH != 0 {
			if len(data) < 2 {
				return nil, ErrTruncated
			}
			length = int(binary.BigEndian.Uint16(data))
			data = data[2:]
		} else {
			if len(data) < 1 {
				return nil, ErrTruncated
			}
			length = int(data[0])
			data = data[1:]
		}
		if len(data) < length {
			return nil, ErrTruncated
		}
		value := data[:length]
		data = data[length:]
		switch {
		case code == bgp.BGP_ATTR_TYPE_AS_PATH:
			if len(value) < 1 {
				return nil, ErrTruncated
			}
			switch value[0] {
			case byte(bgp.BGP_ASPATH_ATTR_TYPE_SET):
				// Unordered, keep scanning for an AS_SEQUENCE.
				continue
			case byte(bgp.BGP_ASPATH_ATTR_TYPE_SEQ):
				if len(value) < 2 {
					return nil, ErrTruncated
				}
				count := int(value[1])
				value = value[2:]
				if len(value) < count*4 {
					return nil, ErrTruncated
				}
				path := make(ASPath, count)
				for i := range path {
					path[i] = binary.BigEndian.Uint32(value[i*4:])
				}
				return path, nil
			default:
				return nil, UnsupportedSegmentError{Type: value[0]}
			}
		case code >= bgp.BGP_ATTR_TYPE_ORIGIN && code <= bgp.BGP_ATTR_TYPE_EXTENDED_COMMUNITIES:
			// Type codes 1 and 3 to 16: not needed, skip the value.
		default:
			return nil, UnsupportedAttributeError{Code: uint8(code)}
		}
	}
	return nil, ErrNoASPath
}

// Dedup collapses immediately-adjacent repeated AS numbers, as
// produced by path prepending. [7 7 9 9 7] becomes [7 9 7]. The
// result reuses the backing array.
func (p ASPath) Dedup() ASPath {
	if len(p) < 2 {
		return p
	}
	out := p[:1]
	for _, asn := range p[1:] {
		if asn != out[len(out)-1] {
			out = append(out, asn)
		}
	}
	return out
}

// Equal tells if two AS paths are identical.
func (p ASPath) Equal(other ASPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
