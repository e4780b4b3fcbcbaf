// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fpcheck

import "github.com/maruel/fpdiv-check/floatx"

// ResultsEqual reports whether the hardware result matches the reference.
//
// When the reference is any NaN, the hardware must return the format's
// canonical NaN; other NaN encodings are rejected. Otherwise the bit patterns
// must be identical. Both values are truncated to the format width.
func ResultsEqual(f floatx.Format, ref, hw uint64) bool {
	hw &= f.Mask()
	if f.IsNaN(ref) {
		return hw == f.CanonicalNaN()
	}
	return hw == ref&f.Mask()
}

// UnderflowExempt reports whether the Underflow flag is ignored for a
// reference result: the hardware disagrees with the reference on the flag
// when the result is exactly the smallest normal magnitude, of either sign.
func UnderflowExempt(f floatx.Format, ref uint64) bool {
	return f.IsMinNormal(ref)
}

// ComparedFlags returns the flags that take part in the comparison for a
// reference result.
func ComparedFlags(f floatx.Format, ref uint64) floatx.Flags {
	if UnderflowExempt(f, ref) {
		return floatx.AllFlags &^ floatx.Underflow
	}
	return floatx.AllFlags
}

// FlagsDiff returns the compared flags that differ between the hardware and
// the reference.
func FlagsDiff(f floatx.Format, ref uint64, hw, refFlags floatx.Flags) floatx.Flags {
	return (hw ^ refFlags) & ComparedFlags(f, ref)
}

// FlagsEqual reports whether the hardware flags match the reference flags.
//
// InvalidOperation, DivideByZero, Overflow and Inexact must always match.
// Underflow must match unless the reference result is the positive or
// negative min normal constant of the format.
func FlagsEqual(f floatx.Format, ref uint64, hw, refFlags floatx.Flags) bool {
	return FlagsDiff(f, ref, hw, refFlags) == 0
}
