// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package coverage

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maruel/fpdiv-check/floatx"
	"github.com/maruel/fpdiv-check/fpcheck"
	"github.com/maruel/fpdiv-check/softfloat"
)

func TestClassify(t *testing.T) {
	data := []struct {
		f    floatx.Format
		v    uint64
		want Class
	}{
		{floatx.Half, 0x8000, Zero},
		{floatx.Half, 0x0001, Subnormal},
		{floatx.Half, 0x0400, Normal},
		{floatx.Half, 0xFC00, Inf},
		{floatx.Half, 0x7E00, NaN},
		{floatx.Single, 0x7F800001, NaN},
		{floatx.Double, 0x3FF0000000000000, Normal},
	}
	for _, line := range data {
		if got := Classify(line.f, line.v); got != line.want {
			t.Errorf("%s %#x: want=%s got=%s", line.f, line.v, line.want, got)
		}
	}
	if s := Class(9).String(); s != "class9" {
		t.Error(s)
	}
}

func TestReport(t *testing.T) {
	c := fpcheck.New(&softfloat.Context{}, fpcheck.NewMismatchLog(0))
	vectors := []fpcheck.Vector{
		{Format: floatx.Single, A: 0x3F800000, B: 0x40000000, Result: 0x3F000000},
		{Format: floatx.Single, RoundingMode: 9, A: 0x3F800000, B: 0x40400000, Result: 0x3EAAAAAB, Flags: floatx.Inexact},
		{Format: floatx.Single, RoundingMode: 3, A: 0x40800000, B: 0x00000000, Result: 0},
		{Format: floatx.Half, A: 0x3BFF, B: 0x7400, Result: 0x0400, Flags: floatx.Inexact},
	}
	r := New()
	for _, v := range vectors {
		res := c.Verdict(v)
		r.Add(&res)
	}
	s := r.For(floatx.Single)
	if s.Vectors != 3 || s.Failed != 1 {
		t.Fatalf("vectors=%d failed=%d", s.Vectors, s.Failed)
	}
	// Exponents 127, 128, 129 and 0 for operands; 126, 125 and 255 for
	// results.
	if got := s.OperandExponents.Effective(); got != 4 {
		t.Errorf("operand exponents: %d", got)
	}
	if got := s.ResultExponents.Effective(); got != 3 {
		t.Errorf("result exponents: %d", got)
	}
	if s.Flags.Get(0) != 1 || s.Flags.Get(int(floatx.Inexact)) != 1 || s.Flags.Get(int(floatx.DivByZero)) != 1 {
		t.Errorf("flags: %v", s.Flags.Counts)
	}
	if s.RoundingModes.Get(0) != 1 || s.RoundingModes.Get(3) != 1 || s.RoundingModes.Get(7) != 1 {
		t.Errorf("rounding modes: %v", s.RoundingModes.Counts)
	}
	if want := [numClasses]int64{Normal: 2, Inf: 1}; s.Classes != want {
		t.Errorf("classes: %v", s.Classes)
	}
	h := r.For(floatx.Half)
	if h.Vectors != 1 || h.Failed != 0 || h.UnderflowExempt != 1 {
		t.Errorf("half: %+v", h)
	}
	if got := r.For(floatx.Double).Vectors; got != 0 {
		t.Errorf("double: %d", got)
	}
	if got := s.ExponentBitsUsed(); got != 2 {
		t.Errorf("exponent bits used: %g", got)
	}
}

func TestReport_JSON(t *testing.T) {
	c := fpcheck.New(&softfloat.Context{}, fpcheck.NewMismatchLog(0))
	r := New()
	res := c.Verdict(fpcheck.Vector{Format: floatx.Double, A: 0x3FF0000000000000, B: 0x4000000000000000, Result: 0x3FE0000000000000})
	r.Add(&res)
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	got := &Report{}
	if err := json.Unmarshal(b, got); err != nil {
		t.Fatal(err)
	}
	opt := cmp.Comparer(func(a, b floatx.Format) bool { return a == b })
	if diff := cmp.Diff(r, got, opt); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
