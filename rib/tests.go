// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package rib

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"asbottleneck/common/helpers"
)

func init() {
	helpers.RegisterCmpOption(cmpopts.EquateComparable(Address{}))
}

// MustParseAddress parses an address and panics on error. For tests.
func MustParseAddress(input string) Address {
	addr, err := ParseAddress(input)
	if err != nil {
		panic(err)
	}
	return addr
}
