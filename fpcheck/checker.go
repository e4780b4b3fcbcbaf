// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fpcheck decides whether a hardware floating point divider agrees
// with a reference engine and keeps a bounded history of disagreements.
package fpcheck

import (
	"fmt"

	"github.com/maruel/fpdiv-check/floatx"
)

// Vector is one division executed by the hardware under test.
type Vector struct {
	Format floatx.Format
	// RoundingMode is forwarded verbatim to the reference engine.
	RoundingMode uint32
	A            uint64
	B            uint64
	// Result and Flags are what the hardware produced.
	Result uint64
	Flags  floatx.Flags
}

// NewVectorFromHalves builds a Vector from the 32-bit words of the hardware
// interface. Half and single only use the low words.
func NewVectorFromHalves(format, rm, aHi, aLo, bHi, bLo, resHi, resLo, flags uint32) (Vector, error) {
	f, err := floatx.FormatFromCode(format)
	if err != nil {
		return Vector{}, err
	}
	return Vector{
		Format:       f,
		RoundingMode: rm,
		A:            f.Operand(aHi, aLo),
		B:            f.Operand(bHi, bLo),
		Result:       f.Operand(resHi, resLo),
		Flags:        floatx.Flags(flags),
	}, nil
}

// Result is the outcome of checking one Vector.
type Result struct {
	Vector
	Reference      uint64
	ReferenceFlags floatx.Flags
	// ResultOK is true when the hardware result matches the reference.
	ResultOK bool
	// FlagsDiff holds the compared flags that differ.
	FlagsDiff floatx.Flags
	// UnderflowExempt is true when the Underflow flag was not compared.
	UnderflowExempt bool
}

// Pass reports whether both the result and the flags match.
func (r *Result) Pass() bool {
	return r.ResultOK && r.FlagsDiff == 0
}

// Record returns the CheckRecord describing r.
func (r *Result) Record() CheckRecord {
	m := r.Format.Mask()
	return CheckRecord{
		OperandA:        r.A & m,
		OperandB:        r.B & m,
		Format:          r.Format,
		RoundingMode:    r.RoundingMode,
		HardwareResult:  r.Result & m,
		HardwareFlags:   r.Flags,
		ReferenceResult: r.Reference,
		ReferenceFlags:  r.ReferenceFlags,
	}
}

// Checker compares hardware results against an Oracle and records the
// mismatches.
//
// Calls must be sequential: the engine behind the Oracle and the log are
// shared mutable state.
type Checker struct {
	oracle *Oracle
	log    *MismatchLog
}

// New returns a Checker using e as the reference and recording into log.
func New(e Engine, log *MismatchLog) *Checker {
	return &Checker{oracle: NewOracle(e), log: log}
}

// Log returns the mismatch log.
func (c *Checker) Log() *MismatchLog {
	return c.log
}

// Verdict compares v against the reference without recording anything.
func (c *Checker) Verdict(v Vector) Result {
	f := v.Format
	ref, refFlags := c.oracle.Divide(f, v.A, v.B, v.RoundingMode)
	return Result{
		Vector:          v,
		Reference:       ref,
		ReferenceFlags:  refFlags,
		ResultOK:        ResultsEqual(f, ref, v.Result),
		FlagsDiff:       FlagsDiff(f, ref, v.Flags, refFlags),
		UnderflowExempt: UnderflowExempt(f, ref),
	}
}

// Check returns whether v passes. On failure the mismatch is recorded at
// slot.
//
// The returned error is only set when the mismatch could not be recorded:
// slot is outside the log or already used. The verdict is valid either way.
func (c *Checker) Check(v Vector, slot int) (bool, error) {
	r := c.Verdict(v)
	if r.Pass() {
		return true, nil
	}
	if err := c.log.Record(slot, r.Record()); err != nil {
		return false, fmt.Errorf("recording %s mismatch: %w", v.Format, err)
	}
	return false, nil
}
