// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package rib

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Address identifies an announced destination: an IP plus an optional
// prefix length. It is comparable and can be used as a map key.
// Addresses are built once per RIB entry, when the prefix length
// becomes known, and are immutable afterwards.
type Address struct {
	ip   netip.Addr
	bits int16 // -1 when no prefix length is known
}

// NewAddress returns an address without a prefix length.
func NewAddress(ip netip.Addr) Address {
	return Address{ip: ip, bits: -1}
}

// WithPrefixLen returns a copy of the address with the provided
// prefix length attached.
func (a Address) WithPrefixLen(bits uint8) Address {
	a.bits = int16(bits)
	return a
}

// Addr returns the IP of the address.
func (a Address) Addr() netip.Addr {
	return a.ip
}

// PrefixLen returns the prefix length of the address and whether one
// is attached.
func (a Address) PrefixLen() (uint8, bool) {
	if a.bits < 0 {
		return 0, false
	}
	return uint8(a.bits), true
}

// Prefix turns the address into a prefix. It reports false when no
// prefix length is attached or when the length does not fit the IP.
func (a Address) Prefix() (netip.Prefix, bool) {
	if a.bits < 0 || int(a.bits) > a.ip.BitLen() {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(a.ip, int(a.bits)), true
}

// String renders the address as "ip/bits", or just "ip" when no
// prefix length is attached.
func (a Address) String() string {
	if a.bits < 0 {
		return a.ip.String()
	}
	return fmt.Sprintf("%s/%d", a.ip, a.bits)
}

// Compare orders addresses by IP, then by prefix length.
func (a Address) Compare(other Address) int {
	if result := a.ip.Compare(other.ip); result != 0 {
		return result
	}
	return int(a.bits) - int(other.bits)
}

// ParseAddress parses an "ip" or "ip/bits" string into an address.
func ParseAddress(input string) (Address, error) {
	before, after, found := strings.Cut(input, "/")
	ip, err := netip.ParseAddr(before)
	if err != nil {
		return Address{}, fmt.Errorf("cannot parse address %q: %w", input, err)
	}
	if !found {
		return NewAddress(ip), nil
	}
	bits, err := strconv.ParseUint(after, 10, 8)
	if err != nil || int(bits) > ip.BitLen() {
		return Address{}, fmt.Errorf("cannot parse address %q: invalid prefix length", input)
	}
	return NewAddress(ip).WithPrefixLen(uint8(bits)), nil
}
