// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package floatx

import "strings"

// Flags is the set of IEEE 754 exception flags, in the RISC-V fflags layout.
type Flags uint8

const (
	Inexact   Flags = 1 << 0
	Underflow Flags = 1 << 1
	Overflow  Flags = 1 << 2
	DivByZero Flags = 1 << 3
	Invalid   Flags = 1 << 4

	// AllFlags has every defined flag set.
	AllFlags = Invalid | DivByZero | Overflow | Underflow | Inexact
)

var flagNames = [...]struct {
	f    Flags
	name string
}{
	{Invalid, "NV"},
	{DivByZero, "DZ"},
	{Overflow, "OF"},
	{Underflow, "UF"},
	{Inexact, "NX"},
}

// Has reports whether all the bits of o are set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// String returns the set flags as "NV|DZ|OF|UF|NX", or "-" when empty.
func (f Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}
