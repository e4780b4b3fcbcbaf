// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package softfloat is a software IEEE 754 divider for binary16, binary32 and
// binary64, used as the trusted reference.
//
// All state that a C soft float library keeps in globals (rounding mode,
// tininess detection, accumulated exception flags) lives in a Context value.
// A Context is not safe for concurrent use.
package softfloat

import (
	"fmt"
	"math/bits"

	"github.com/maruel/fpdiv-check/floatx"
)

// RoundingMode is a rounding mode code, numbered like the RISC-V frm field.
type RoundingMode uint32

const (
	RoundNearEven   RoundingMode = 0
	RoundMinMag     RoundingMode = 1
	RoundMin        RoundingMode = 2
	RoundMax        RoundingMode = 3
	RoundNearMaxMag RoundingMode = 4
	RoundOdd        RoundingMode = 6
)

func (r RoundingMode) String() string {
	switch r {
	case RoundNearEven:
		return "rne"
	case RoundMinMag:
		return "rtz"
	case RoundMin:
		return "rdn"
	case RoundMax:
		return "rup"
	case RoundNearMaxMag:
		return "rmm"
	case RoundOdd:
		return "rod"
	default:
		return fmt.Sprintf("rm%d", uint32(r))
	}
}

// Tininess selects when a result is classified as tiny for the purpose of
// raising Underflow.
type Tininess uint8

const (
	// BeforeRounding classifies a result as tiny when its exact value is
	// below the smallest normal magnitude.
	BeforeRounding Tininess = iota
	// AfterRounding classifies a result as tiny when rounding it with an
	// unbounded exponent range would still be below the smallest normal
	// magnitude.
	AfterRounding
)

func (t Tininess) String() string {
	if t == AfterRounding {
		return "after"
	}
	return "before"
}

// NaNStyle selects the NaN a computation returns.
type NaNStyle uint8

const (
	// PropagateNaN returns the first NaN operand, quieted. Invalid
	// operations return the negative default NaN. This is the x86 SSE
	// behavior.
	PropagateNaN NaNStyle = iota
	// DefaultNaN always returns the positive canonical NaN. This is the
	// RISC-V behavior.
	DefaultNaN
)

func (n NaNStyle) String() string {
	if n == DefaultNaN {
		return "default"
	}
	return "propagate"
}

// Context is the mutable state of the reference engine.
//
// The zero value rounds to nearest even, detects tininess before rounding,
// propagates NaN payloads and has no flag raised.
type Context struct {
	RoundingMode RoundingMode
	Tininess     Tininess
	NaNStyle     NaNStyle
	// Flags accumulates the exceptions raised since it was last cleared.
	Flags floatx.Flags
}

// SetRoundingMode sets the rounding mode for the next operations.
func (c *Context) SetRoundingMode(rm uint32) {
	c.RoundingMode = RoundingMode(rm)
}

// SetTininess sets the tininess detection policy for the next operations.
func (c *Context) SetTininess(t Tininess) {
	c.Tininess = t
}

// ClearFlags resets the accumulated exception flags.
func (c *Context) ClearFlags() {
	c.Flags = 0
}

// RaisedFlags returns the accumulated exception flags.
func (c *Context) RaisedFlags() floatx.Flags {
	return c.Flags
}

// roundBits is the number of bits kept below the result's least significant
// bit while rounding: guard, round and sticky.
const roundBits = 3

// Div returns a / b in format f and accumulates the raised exceptions in
// c.Flags.
//
// a and b are masked to the format width.
func (c *Context) Div(f floatx.Format, a, b uint64) uint64 {
	signA, expA, fracA := f.Components(a)
	signB, expB, fracB := f.Components(b)
	sign := signA ^ signB
	maxExp := f.MaxExponent()

	if f.IsNaN(a) || f.IsNaN(b) {
		return c.propagateNaN(f, a, b)
	}
	if expA == maxExp {
		if expB == maxExp {
			return c.invalid(f)
		}
		return f.Pack(sign, maxExp, 0)
	}
	if expB == maxExp {
		return f.Pack(sign, 0, 0)
	}
	if expB == 0 && fracB == 0 {
		if expA == 0 && fracA == 0 {
			return c.invalid(f)
		}
		c.Flags |= floatx.DivByZero
		return f.Pack(sign, maxExp, 0)
	}
	if expA == 0 && fracA == 0 {
		return f.Pack(sign, 0, 0)
	}

	m := f.FractionBits()
	eA, sigA := normalize(m, expA, fracA)
	eB, sigB := normalize(m, expB, fracB)
	// exp is the biased exponent of the quotient minus one, so that adding
	// the significand's hidden bit while packing restores it.
	exp := eA - eB + f.Bias() - 1
	if sigA < sigB {
		exp--
		sigA <<= 1
	}
	// sigA/sigB is in [1, 2). Scale the numerator so the quotient has its
	// hidden bit at m+roundBits.
	shift := m + roundBits
	hi, lo := sigA>>(64-shift), sigA<<shift
	q, r := bits.Div64(hi, lo, sigB)
	if r != 0 {
		q |= 1
	}
	return c.roundPack(f, sign, exp, q)
}

// normalize returns the unbiased-adjusted exponent and the significand with
// the hidden bit at position m. Subnormals are shifted up and get an
// exponent below 1.
func normalize(m uint, exp uint16, frac uint64) (int, uint64) {
	if exp != 0 {
		return int(exp), frac | 1<<m
	}
	shift := bits.LeadingZeros64(frac) - int(63-m)
	return 1 - shift, frac << shift
}

// roundPack rounds sig, which has its hidden bit at FractionBits()+roundBits,
// and packs it with exp, the biased exponent minus one.
func (c *Context) roundPack(f floatx.Format, sign uint8, exp int, sig uint64) uint64 {
	const mask = 1<<roundBits - 1
	const half = 1 << (roundBits - 1)
	m := f.FractionBits()
	carry := uint64(1) << (m + roundBits + 1)
	mode := c.RoundingMode
	nearEven := mode == RoundNearEven || !mode.known()

	var inc uint64
	switch {
	case nearEven || mode == RoundNearMaxMag:
		inc = half
	case mode == RoundMin && sign == 1, mode == RoundMax && sign == 0:
		inc = mask
	}

	maxExp := int(f.MaxExponent())
	if exp < 0 {
		tiny := c.Tininess == BeforeRounding || exp < -1 || sig+inc < carry
		sig = shiftRightJam(sig, uint(-exp))
		exp = 0
		if tiny && sig&mask != 0 {
			c.Flags |= floatx.Underflow
		}
	} else if exp >= maxExp-2 && (exp > maxExp-2 || sig+inc >= carry) {
		c.Flags |= floatx.Overflow | floatx.Inexact
		if inc == 0 {
			// Largest finite value.
			return f.Pack(sign, uint16(maxExp), 0) - 1
		}
		return f.Pack(sign, uint16(maxExp), 0)
	}

	rb := sig & mask
	sig = (sig + inc) >> roundBits
	if rb != 0 {
		c.Flags |= floatx.Inexact
		if mode == RoundOdd {
			sig |= 1
		}
	}
	if nearEven && rb == half {
		sig &^= 1
	}
	if sig == 0 {
		exp = 0
	}
	return f.Pack(sign, 0, 0) | (uint64(exp)<<m + sig)
}

func (c *Context) invalid(f floatx.Format) uint64 {
	c.Flags |= floatx.Invalid
	return c.defaultNaN(f)
}

func (c *Context) defaultNaN(f floatx.Format) uint64 {
	if c.NaNStyle == PropagateNaN {
		return f.CanonicalNaN() | f.SignBit()
	}
	return f.CanonicalNaN()
}

func (c *Context) propagateNaN(f floatx.Format, a, b uint64) uint64 {
	if f.IsSignalingNaN(a) || f.IsSignalingNaN(b) {
		c.Flags |= floatx.Invalid
	}
	if c.NaNStyle == DefaultNaN {
		return f.CanonicalNaN()
	}
	if f.IsNaN(a) {
		return f.Quiet(a)
	}
	return f.Quiet(b)
}

func (r RoundingMode) known() bool {
	switch r {
	case RoundNearEven, RoundMinMag, RoundMin, RoundMax, RoundNearMaxMag, RoundOdd:
		return true
	}
	return false
}

// shiftRightJam shifts v right by n bits, ORing every bit shifted out into the
// least significant bit of the result.
func shiftRightJam(v uint64, n uint) uint64 {
	if n >= 64 {
		if v != 0 {
			return 1
		}
		return 0
	}
	out := v >> n
	if v&(1<<n-1) != 0 {
		out |= 1
	}
	return out
}
