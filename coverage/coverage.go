// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package coverage tallies which part of the encoding space a run of checked
// divisions exercised.
package coverage

import (
	"fmt"
	"math"

	"github.com/maruel/fpdiv-check/floatx"
	"github.com/maruel/fpdiv-check/fpcheck"
)

// Class is the IEEE 754 class of a value.
type Class int

const (
	Zero Class = iota
	Subnormal
	Normal
	Inf
	NaN
	numClasses
)

var classNames = [...]string{"zero", "subnormal", "normal", "inf", "nan"}

func (c Class) String() string {
	if c < 0 || c >= numClasses {
		return fmt.Sprintf("class%d", int(c))
	}
	return classNames[c]
}

// Classify returns the class of v in format f.
func Classify(f floatx.Format, v uint64) Class {
	switch {
	case f.IsNaN(v):
		return NaN
	case f.IsInf(v):
		return Inf
	case f.IsZero(v):
		return Zero
	case f.IsSubnormal(v):
		return Subnormal
	default:
		return Normal
	}
}

// numRoundingModes is the size of the RISC-V frm field.
const numRoundingModes = 8

// Format contains the tallies for one floating point format.
type Format struct {
	Format  floatx.Format `json:"format"`
	Vectors int64         `json:"vectors"`
	Failed  int64         `json:"failed"`
	// OperandExponents has a bit per biased exponent seen in either operand.
	OperandExponents BitSet `json:"opexp"`
	// ResultExponents has a bit per biased exponent seen in the reference
	// result.
	ResultExponents BitSet `json:"resexp"`
	// Flags counts each combination of reference flags.
	Flags CountSet `json:"flags"`
	// RoundingModes counts each rounding mode code. Codes past the frm range
	// are folded into the last counter.
	RoundingModes CountSet `json:"rm"`
	// Classes counts the reference results per Class.
	Classes [numClasses]int64 `json:"classes"`
	// UnderflowExempt counts the vectors where Underflow was not compared.
	UnderflowExempt int64 `json:"uf_exempt"`
}

func newFormat(f floatx.Format) *Format {
	c := &Format{Format: f}
	c.OperandExponents.Resize(1 << f.ExponentBits())
	c.ResultExponents.Resize(1 << f.ExponentBits())
	c.Flags.Resize(int(floatx.AllFlags) + 1)
	c.RoundingModes.Resize(numRoundingModes)
	return c
}

// Add accounts for one checked vector.
func (c *Format) Add(r *fpcheck.Result) {
	f := c.Format
	c.Vectors++
	if !r.Pass() {
		c.Failed++
	}
	_, ea, _ := f.Components(r.A)
	_, eb, _ := f.Components(r.B)
	_, er, _ := f.Components(r.Reference)
	c.OperandExponents.Set(int(ea))
	c.OperandExponents.Set(int(eb))
	c.ResultExponents.Set(int(er))
	c.Flags.Add(int(r.ReferenceFlags & floatx.AllFlags))
	rm := r.RoundingMode
	if rm >= numRoundingModes {
		rm = numRoundingModes - 1
	}
	c.RoundingModes.Add(int(rm))
	c.Classes[Classify(f, r.Reference)]++
	if r.UnderflowExempt {
		c.UnderflowExempt++
	}
}

// ExponentBitsUsed returns log2 of the number of different operand exponents
// seen, to compare against the ExponentBits() of the format.
func (c *Format) ExponentBitsUsed() float32 {
	n := c.OperandExponents.Effective()
	if n == 0 {
		return 0
	}
	return float32(math.Log2(float64(n)))
}

// Report holds the tallies for every format.
type Report struct {
	Formats []*Format `json:"formats"`
}

// New returns an empty Report.
func New() *Report {
	r := &Report{}
	for _, f := range floatx.Formats() {
		r.Formats = append(r.Formats, newFormat(f))
	}
	return r
}

// Add accounts for one checked vector.
func (r *Report) Add(res *fpcheck.Result) {
	r.For(res.Format).Add(res)
}

// For returns the tallies of format f.
func (r *Report) For(f floatx.Format) *Format {
	for _, c := range r.Formats {
		if c.Format == f {
			return c
		}
	}
	c := newFormat(f)
	r.Formats = append(r.Formats, c)
	return c
}
