// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maruel/fpdiv-check/coverage"
	"github.com/maruel/fpdiv-check/floatx"
	"github.com/maruel/fpdiv-check/fpcheck"
	"github.com/maruel/fpdiv-check/softfloat"
)

var cmpFormat = cmp.Comparer(func(a, b floatx.Format) bool { return a == b })

func TestParseVector(t *testing.T) {
	data := []struct {
		in   string
		want fpcheck.Vector
	}{
		{
			"half 0 3c00 4000 3800 0",
			fpcheck.Vector{Format: floatx.Half, A: 0x3C00, B: 0x4000, Result: 0x3800},
		},
		{
			"s 3 0x3F800000 0x40400000 0x3EAAAAAB 0x1",
			fpcheck.Vector{Format: floatx.Single, RoundingMode: 3, A: 0x3F800000, B: 0x40400000, Result: 0x3EAAAAAB, Flags: floatx.Inexact},
		},
		{
			"2 1 3ff0000000000000 4000000000000000 3fe0000000000000 0",
			fpcheck.Vector{Format: floatx.Double, RoundingMode: 1, A: 0x3FF0000000000000, B: 0x4000000000000000, Result: 0x3FE0000000000000},
		},
		{
			// Bits past the format width are dropped.
			"half 0 ffff3c00 4000 3800 0",
			fpcheck.Vector{Format: floatx.Half, A: 0x3C00, B: 0x4000, Result: 0x3800},
		},
	}
	for i, line := range data {
		got, err := parseVector(line.in)
		if err != nil {
			t.Fatalf("#%d: %v", i, err)
		}
		if diff := cmp.Diff(line.want, got, cmpFormat); diff != "" {
			t.Errorf("#%d: (-want +got):\n%s", i, diff)
		}
	}
}

func TestParseVector_Error(t *testing.T) {
	data := []struct {
		in   string
		want string
	}{
		{"half 0 3c00 4000 3800", "want 6 fields, got 5"},
		{"quad 0 3c00 4000 3800 0", "unknown"},
		{"half 0 3c00 zz 3800 0", "b: "},
		{"half 100000000 3c00 4000 3800 0", "rm: "},
	}
	for i, line := range data {
		_, err := parseVector(line.in)
		if err == nil || !strings.Contains(err.Error(), line.want) {
			t.Errorf("#%d: want %q, got %v", i, line.want, err)
		}
	}
	if _, err := parseVector("quad 0 0 0 0 0"); !errors.Is(err, floatx.ErrUnknownFormat) {
		t.Error(err)
	}
}

func TestLoadVectors(t *testing.T) {
	in := "# header\n\nhalf 0 3c00 4000 3800 0\n  # indented comment\nsingle 0 3f800000 40000000 3f000000 0\n"
	got, err := loadVectors(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].line != 3 || got[1].line != 5 {
		t.Fatalf("%+v", got)
	}
	if got[1].v.Format != floatx.Single {
		t.Error(got[1].v.Format)
	}
	_, err = loadVectors(strings.NewReader("half 0 3c00 4000 3800 0\nhalf 0\n"))
	if err == nil || !strings.HasPrefix(err.Error(), "line 2: ") {
		t.Fatal(err)
	}
}

func writeDump(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
	return p
}

const dump = `# format rm a b result flags
half 0 3c00 4000 3800 0
half 0 3C00 4000 3801 1
single 0 0x3f800000 0x40400000 3eaaaaab 0
half 0 0 0 7e00 10
double 0 3ff0000000000000 4000000000000000 3fe0000000000000 0
`

func TestRunDump(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o777); err != nil {
		t.Fatal(err)
	}
	p := writeDump(t, dir, "run.dump", dump)
	cfg := config{outDir: out, json: true, capacity: 1}
	s, err := runDump(context.Background(), p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.vectors != 5 || s.failed != 2 || s.recorded != 1 || s.dropped != 1 {
		t.Fatalf("%+v", s)
	}
	if want := filepath.Join(out, "run.result.log"); s.report != want {
		t.Fatalf("want %q, got %q", want, s.report)
	}
	b, err := os.ReadFile(s.report)
	if err != nil {
		t.Fatal(err)
	}
	want := `[0]:
operandA = 0000000000003C00
operandB = 0000000000004000
format = 0000000000000000
roundingMode = 0000000000000000
hardwareResult = 0000000000003801
hardwareFlags = 0000000000000001
referenceResult = 0000000000003800
referenceFlags = 0000000000000000
`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	b, err = os.ReadFile(filepath.Join(out, "run.result.json"))
	if err != nil {
		t.Fatal(err)
	}
	var records []*fpcheck.CheckRecord
	if err := json.Unmarshal(b, &records); err != nil {
		t.Fatal(err)
	}
	wantRecords := []*fpcheck.CheckRecord{{
		OperandA:        0x3C00,
		OperandB:        0x4000,
		Format:          floatx.Half,
		HardwareResult:  0x3801,
		HardwareFlags:   floatx.Inexact,
		ReferenceResult: 0x3800,
	}}
	if diff := cmp.Diff(wantRecords, records, cmpFormat); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	b, err = os.ReadFile(filepath.Join(out, "run.coverage.json"))
	if err != nil {
		t.Fatal(err)
	}
	cov := &coverage.Report{}
	if err := json.Unmarshal(b, cov); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s.coverage, cov, cmpFormat); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if h := cov.For(floatx.Half); h.Vectors != 3 || h.Failed != 1 {
		t.Errorf("half: %d vectors, %d failed", h.Vectors, h.Failed)
	}
}

func TestRunDump_DefaultNaN(t *testing.T) {
	dir := t.TempDir()
	// Under the default NaN style the reference engine already returns the
	// canonical NaN, so both styles agree with a canonical hardware NaN.
	p := writeDump(t, dir, "nan.txt", "half 0 0 0 7e00 10\nsingle 0 7fc00001 3f800000 7fc00000 0\n")
	for _, style := range []softfloat.NaNStyle{softfloat.PropagateNaN, softfloat.DefaultNaN} {
		s, err := runDump(context.Background(), p, config{outDir: dir, nanStyle: style, capacity: 10})
		if err != nil {
			t.Fatal(err)
		}
		if s.failed != 0 {
			t.Errorf("%v: %d failed", style, s.failed)
		}
	}
}

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "reports")
	a := writeDump(t, dir, "a.dump", dump)
	b := writeDump(t, dir, "b.dump", "single 0 3f800000 40000000 3f000000 0\n")
	summaries, err := runAll(context.Background(), []string{a, b}, config{outDir: out, capacity: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 || summaries[0].failed != 2 || summaries[0].recorded != 2 || summaries[1].failed != 0 {
		t.Fatalf("%+v", summaries)
	}
	b2, err := os.ReadFile(filepath.Join(out, "b.result.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(b2) != 0 {
		t.Errorf("unexpected report: %q", b2)
	}
	if _, err := os.Stat(filepath.Join(out, "a.result.json")); !os.IsNotExist(err) {
		t.Errorf("json written without -json: %v", err)
	}
}

func TestRunAll_Error(t *testing.T) {
	dir := t.TempDir()
	good := writeDump(t, dir, "good.dump", dump)
	bad := writeDump(t, dir, "bad.dump", "half 0 3c00\n")
	_, err := runAll(context.Background(), []string{good, bad}, config{outDir: dir, capacity: 10})
	if err == nil || !strings.Contains(err.Error(), "bad.dump: line 1: ") {
		t.Fatal(err)
	}
	_, err = runAll(context.Background(), []string{filepath.Join(dir, "missing.dump")}, config{outDir: dir, capacity: 10})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatal(err)
	}
}

func TestRunDump_Canceled(t *testing.T) {
	dir := t.TempDir()
	p := writeDump(t, dir, "run.dump", dump)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runDump(ctx, p, config{outDir: dir, capacity: 10}); !errors.Is(err, context.Canceled) {
		t.Fatal(err)
	}
}

func TestParseNaNStyle(t *testing.T) {
	if s, err := parseNaNStyle("Default"); err != nil || s != softfloat.DefaultNaN {
		t.Fatal(s, err)
	}
	if s, err := parseNaNStyle("propagate"); err != nil || s != softfloat.PropagateNaN {
		t.Fatal(s, err)
	}
	if _, err := parseNaNStyle("x86"); err == nil {
		t.Fatal("expected error")
	}
}
