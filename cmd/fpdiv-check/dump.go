// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maruel/fpdiv-check/floatx"
	"github.com/maruel/fpdiv-check/fpcheck"
)

// dumpVector is a vector and the line it was read from.
type dumpVector struct {
	line int
	v    fpcheck.Vector
}

func parseHex(s string, bitSize int) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	return strconv.ParseUint(s, 16, bitSize)
}

// parseVector parses "<format> <rm> <a> <b> <result> <flags>".
//
// Values wider than the format are split in 32-bit words the way the hardware
// interface presents them, then reassembled by the format.
func parseVector(s string) (fpcheck.Vector, error) {
	fields := strings.Fields(s)
	if len(fields) != 6 {
		return fpcheck.Vector{}, fmt.Errorf("want 6 fields, got %d", len(fields))
	}
	f, err := floatx.ParseFormat(fields[0])
	if err != nil {
		return fpcheck.Vector{}, err
	}
	var words [5]uint64
	names := [...]string{"rm", "a", "b", "result", "flags"}
	sizes := [...]int{32, 64, 64, 64, 32}
	for i := range words {
		if words[i], err = parseHex(fields[i+1], sizes[i]); err != nil {
			return fpcheck.Vector{}, fmt.Errorf("%s: %w", names[i], err)
		}
	}
	rm, a, b, res, flags := words[0], words[1], words[2], words[3], words[4]
	return fpcheck.NewVectorFromHalves(f.Code(), uint32(rm),
		uint32(a>>32), uint32(a),
		uint32(b>>32), uint32(b),
		uint32(res>>32), uint32(res),
		uint32(flags))
}

// loadVectors reads a dump. Empty lines and lines starting with # are
// skipped.
func loadVectors(r io.Reader) ([]dumpVector, error) {
	var out []dumpVector
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		l := strings.TrimSpace(s.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		v, err := parseVector(l)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, dumpVector{line: n, v: v})
	}
	return out, s.Err()
}
