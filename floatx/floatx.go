// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package floatx interprets raw IEEE 754 binary16, binary32 and binary64 bit
// patterns.
//
// Every bit pattern is a legal input. Nothing in this package validates or
// normalizes operands.
package floatx

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownFormat is returned when a format code or name is not recognized.
var ErrUnknownFormat = errors.New("unknown floating point format")

// Format is one of the IEEE 754 binary interchange formats handled by the
// checker.
//
// Format values are comparable. Use Half, Single or Double; the zero value is
// not a valid format.
type Format struct {
	name         string
	code         uint32
	exponentBits uint
	fractionBits uint
	canonicalNaN uint64
	minNormal    uint64
	negMinNormal uint64
}

var (
	// Half is IEEE 754 binary16.
	//
	// See https://en.wikipedia.org/wiki/Half-precision_floating-point_format
	Half = Format{
		name:         "half",
		code:         0,
		exponentBits: 5,
		fractionBits: 10,
		canonicalNaN: 0x7E00,
		minNormal:    0x0400,
		negMinNormal: 0x8400,
	}
	// Single is IEEE 754 binary32.
	//
	// See https://en.wikipedia.org/wiki/Single-precision_floating-point_format
	Single = Format{
		name:         "single",
		code:         1,
		exponentBits: 8,
		fractionBits: 23,
		canonicalNaN: 0x7FC00000,
		minNormal:    0x00800000,
		negMinNormal: 0x80800000,
	}
	// Double is IEEE 754 binary64.
	//
	// See https://en.wikipedia.org/wiki/Double-precision_floating-point_format
	Double = Format{
		name:         "double",
		code:         2,
		exponentBits: 11,
		fractionBits: 52,
		canonicalNaN: 0x7FF8000000000000,
		minNormal:    0x0010000000000000,
		negMinNormal: 0x8010000000000000,
	}
)

// Formats returns all the supported formats, ordered by code.
func Formats() []Format {
	return []Format{Half, Single, Double}
}

// FormatFromCode returns the format for the integer code used on the hardware
// interface: 0 for half, 1 for single, 2 for double.
func FormatFromCode(code uint32) (Format, error) {
	for _, f := range Formats() {
		if f.code == code {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: code %d", ErrUnknownFormat, code)
}

// ParseFormat accepts a format name ("half"), its first letter ("h") or its
// decimal code ("0").
func ParseFormat(s string) (Format, error) {
	l := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats() {
		if l == f.name || l == f.name[:1] || l == fmt.Sprint(f.code) {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) String() string {
	if f.name == "" {
		return "invalid"
	}
	return f.name
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if f.name == "" {
		return nil, ErrUnknownFormat
	}
	return []byte(f.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Code returns the integer code used on the hardware interface.
func (f Format) Code() uint32 {
	return f.code
}

// Width returns the number of bits in an encoded value.
func (f Format) Width() uint {
	return 1 + f.exponentBits + f.fractionBits
}

// ExponentBits returns the width of the biased exponent field.
func (f Format) ExponentBits() uint {
	return f.exponentBits
}

// FractionBits returns the width of the trailing significand field.
func (f Format) FractionBits() uint {
	return f.fractionBits
}

// Bias returns the exponent bias.
func (f Format) Bias() int {
	return 1<<(f.exponentBits-1) - 1
}

// Mask returns a value with the low Width() bits set.
func (f Format) Mask() uint64 {
	return math.MaxUint64 >> (64 - f.Width())
}

// SignBit returns the mask of the sign bit.
func (f Format) SignBit() uint64 {
	return 1 << (f.Width() - 1)
}

// MaxExponent returns the all ones exponent field value used by Inf and NaN.
func (f Format) MaxExponent() uint16 {
	return 1<<f.exponentBits - 1
}

// CanonicalNaN returns the single NaN encoding a conforming divider produces.
func (f Format) CanonicalNaN() uint64 {
	return f.canonicalNaN
}

// MinNormal returns the smallest positive normal value.
func (f Format) MinNormal() uint64 {
	return f.minNormal
}

// NegMinNormal returns the negative normal value of smallest magnitude.
func (f Format) NegMinNormal() uint64 {
	return f.negMinNormal
}

// Operand assembles a value from the two 32-bit halves supplied by the
// hardware interface.
//
// Half keeps the low 16 bits of lo, Single keeps lo and Double concatenates
// hi and lo.
func (f Format) Operand(hi, lo uint32) uint64 {
	return (uint64(hi)<<32 | uint64(lo)) & f.Mask()
}

// Split is the inverse of Operand.
func (f Format) Split(v uint64) (hi, lo uint32) {
	v &= f.Mask()
	return uint32(v >> 32), uint32(v)
}

// Components returns the sign, exponent and fraction fields separated.
//
// Bits above Width() are ignored.
func (f Format) Components(v uint64) (uint8, uint16, uint64) {
	v &= f.Mask()
	sign := v >> (f.Width() - 1)
	exponent := (v >> f.fractionBits) & uint64(f.MaxExponent())
	fraction := v & (1<<f.fractionBits - 1)
	return uint8(sign), uint16(exponent), fraction
}

// Pack assembles a value from its fields. Fields wider than the format are
// truncated.
func (f Format) Pack(sign uint8, exponent uint16, fraction uint64) uint64 {
	v := uint64(sign&1)<<(f.Width()-1) |
		(uint64(exponent)&uint64(f.MaxExponent()))<<f.fractionBits |
		fraction&(1<<f.fractionBits-1)
	return v
}

// IsNaN reports whether v encodes a NaN: an all ones exponent and a non-zero
// fraction. The sign is ignored.
func (f Format) IsNaN(v uint64) bool {
	_, exponent, fraction := f.Components(v)
	return exponent == f.MaxExponent() && fraction != 0
}

// IsSignalingNaN reports whether v is a NaN with the quiet bit cleared.
func (f Format) IsSignalingNaN(v uint64) bool {
	_, _, fraction := f.Components(v)
	return f.IsNaN(v) && fraction&f.quietBit() == 0
}

// IsInf reports whether v encodes an infinity of either sign.
func (f Format) IsInf(v uint64) bool {
	_, exponent, fraction := f.Components(v)
	return exponent == f.MaxExponent() && fraction == 0
}

// IsZero reports whether v encodes a zero of either sign.
func (f Format) IsZero(v uint64) bool {
	return v&(f.Mask()>>1) == 0
}

// IsSubnormal reports whether v encodes a non-zero subnormal value.
func (f Format) IsSubnormal(v uint64) bool {
	_, exponent, fraction := f.Components(v)
	return exponent == 0 && fraction != 0
}

// IsMinNormal reports whether v is exactly the positive or negative normal
// value of smallest magnitude.
func (f Format) IsMinNormal(v uint64) bool {
	v &= f.Mask()
	return v == f.minNormal || v == f.negMinNormal
}

// Quiet returns v with the quiet bit set. It is meaningful only for NaNs.
func (f Format) Quiet(v uint64) uint64 {
	return (v & f.Mask()) | f.quietBit()
}

// Float64 returns the float64 equivalent, for display.
//
// float64 holds every half and single value exactly. NaN payloads are not
// preserved for half.
func (f Format) Float64(v uint64) float64 {
	switch f {
	case Half:
		return float64(F16(v).Float32())
	case Single:
		return float64(math.Float32frombits(uint32(v)))
	case Double:
		return math.Float64frombits(v)
	default:
		return math.NaN()
	}
}

// HexWidth returns the number of hexadecimal digits needed to print a value.
func (f Format) HexWidth() int {
	return int(f.Width() / 4)
}

func (f Format) quietBit() uint64 {
	return 1 << (f.fractionBits - 1)
}
