// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fpcheck

import (
	"github.com/maruel/fpdiv-check/floatx"
	"github.com/maruel/fpdiv-check/softfloat"
)

// Engine is a stateful reference arithmetic engine.
//
// *softfloat.Context implements it.
type Engine interface {
	SetRoundingMode(rm uint32)
	SetTininess(t softfloat.Tininess)
	ClearFlags()
	RaisedFlags() floatx.Flags
	Div(f floatx.Format, a, b uint64) uint64
}

// Oracle calls an Engine one division at a time, resetting its state before
// each call.
type Oracle struct {
	e Engine
}

// NewOracle wraps e. The Oracle must be the only user of e.
func NewOracle(e Engine) *Oracle {
	return &Oracle{e: e}
}

// Divide returns a / b in format f rounded with rm, and the exceptions raised
// by this division alone.
//
// Tininess is always detected after rounding, like the hardware does.
func (o *Oracle) Divide(f floatx.Format, a, b uint64, rm uint32) (uint64, floatx.Flags) {
	o.e.SetTininess(softfloat.AfterRounding)
	o.e.ClearFlags()
	o.e.SetRoundingMode(rm)
	r := o.e.Div(f, a&f.Mask(), b&f.Mask())
	return r & f.Mask(), o.e.RaisedFlags()
}
