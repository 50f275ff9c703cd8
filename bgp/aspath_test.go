// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package bgp

import (
	"encoding/binary"
	"errors"
	"testing"

	"asbottleneck/common/helpers"
)

// attribute builds one path-attribute TLV. A negative length means
// "use the real value length", a non-negative one forces the length
// field (to build corrupted attributes).
func attribute(extended bool, code uint8, value []byte, forcedLength int) []byte {
	var flags uint8 = 0x40
	out := []byte{}
	length := len(value)
	if forcedLength >= 0 {
		length = forcedLength
	}
	if extended {
		flags |= 0x10
		out = append(out, flags, code)
		out = binary.BigEndian.AppendUint16(out, uint16(length))
	} else {
		out = append(out, flags, code, uint8(length))
	}
	return append(out, value...)
}

func sequence(asns ...uint32) []byte {
	out := []byte{2, uint8(len(asns))}
	for _, asn := range asns {
		out = binary.BigEndian.AppendUint32(out, asn)
	}
	return out
}

func set(asns ...uint32) []byte {
	out := []byte{1, uint8(len(asns))}
	for _, asn := range asns {
		out = binary.BigEndian.AppendUint32(out, asn)
	}
	return out
}

func TestDecodeASPath(t *testing.T) {
	cases := []struct {
		Description string
		Input       []byte
		Expected    ASPath
		Err         error
	}{
		{
			Description: "empty blob",
			Input:       []byte{},
			Err:         ErrNoAttributes,
		}, {
			Description: "single AS_SEQUENCE",
			Input:       attribute(false, 2, sequence(64271, 62240, 3356), -1),
			Expected:    ASPath{64271, 62240, 3356},
		}, {
			Description: "AS_SEQUENCE with extended length",
			Input:       attribute(true, 2, sequence(6894, 13335, 4826, 174), -1),
			Expected:    ASPath{6894, 13335, 4826, 174},
		}, {
			Description: "AS_PATH after skipped attributes",
			Input: append(append(
				attribute(false, 1, []byte{0}, -1),
				attribute(false, 3, []byte{192, 0, 2, 1}, -1)...),
				attribute(false, 2, sequence(65001, 65002), -1)...),
			Expected: ASPath{65001, 65002},
		}, {
			Description: "AS_SET skipped, AS_SEQUENCE found later",
			Input: append(
				attribute(false, 2, set(65003, 65004), -1),
				attribute(false, 2, sequence(65001), -1)...),
			Expected: ASPath{65001},
		}, {
			Description: "only AS_SET",
			Input:       attribute(false, 2, set(65003, 65004), -1),
			Err:         ErrNoASPath,
		}, {
			Description: "no AS_PATH at all",
			Input:       attribute(false, 1, []byte{0}, -1),
			Err:         ErrNoASPath,
		}, {
			Description: "unknown attribute type",
			Input:       attribute(false, 17, []byte{1, 2}, -1),
			Err:         UnsupportedAttributeError{Code: 17},
		}, {
			Description: "unknown segment type",
			Input:       attribute(false, 2, []byte{5, 1, 0, 0, 253, 233}, -1),
			Err:         UnsupportedSegmentError{Type: 5},
		}, {
			Description: "length past end of blob",
			Input:       attribute(false, 1, []byte{0}, 200),
			Err:         ErrTruncated,
		}, {
			Description: "missing length field",
			Input:       []byte{0x40, 1},
			Err:         ErrTruncated,
		}, {
			Description: "missing second length byte",
			Input:       []byte{0x50, 1, 0},
			Err:         ErrTruncated,
		}, {
			Description: "AS_SEQUENCE shorter than its count",
			Input:       attribute(false, 2, []byte{2, 3, 0, 0, 253, 233}, -1),
			Err:         ErrTruncated,
		},
	}
	for _, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			got, err := DecodeASPath(tc.Input)
			if tc.Err != nil {
				if !errors.Is(err, tc.Err) {
					t.Fatalf("DecodeASPath() error %v, expected %v", err, tc.Err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeASPath() error:\n%+v", err)
			}
			if diff := helpers.Diff(got, tc.Expected); diff != "" {
				t.Fatalf("DecodeASPath() (-got, +want):\n%s", diff)
			}
		})
	}
}

func TestDedup(t *testing.T) {
	cases := []struct {
		Input    ASPath
		Expected ASPath
	}{
		{ASPath{}, ASPath{}},
		{ASPath{7}, ASPath{7}},
		{ASPath{7, 7, 7}, ASPath{7}},
		{ASPath{7, 7, 9, 9, 7}, ASPath{7, 9, 7}},
		{ASPath{1, 2, 3}, ASPath{1, 2, 3}},
		{ASPath{64271, 64271, 62240, 3356}, ASPath{64271, 62240, 3356}},
	}
	for _, tc := range cases {
		got := tc.Input.Dedup()
		if diff := helpers.Diff(got, tc.Expected); diff != "" {
			t.Errorf("Dedup() (-got, +want):\n%s", diff)
		}
	}
}

func TestEqual(t *testing.T) {
	if !(ASPath{1, 2, 3}).Equal(ASPath{1, 2, 3}) {
		t.Error("Equal() should report identical paths as equal")
	}
	if (ASPath{1, 2, 3}).Equal(ASPath{1, 2}) {
		t.Error("Equal() should report paths of different lengths as different")
	}
	if (ASPath{1, 2, 3}).Equal(ASPath{1, 2, 4}) {
		t.Error("Equal() should report diverging paths as different")
	}
}
