// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/maruel/fpdiv-check/coverage"
	"github.com/maruel/fpdiv-check/fpcheck"
	"github.com/maruel/fpdiv-check/softfloat"
	"golang.org/x/sync/errgroup"
)

type config struct {
	outDir   string
	json     bool
	nanStyle softfloat.NaNStyle
	capacity int
}

// summary is the outcome of one dump.
type summary struct {
	name     string
	vectors  int
	failed   int
	recorded int
	// dropped is the number of mismatches that did not fit in the log.
	dropped  int
	report   string
	coverage *coverage.Report
}

func reportBase(outDir, dump string) string {
	name := filepath.Base(dump)
	return filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name)))
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o666)
}

// runDump checks every vector of one dump with its own engine and log.
func runDump(ctx context.Context, path string, cfg config) (summary, error) {
	s := summary{name: filepath.Base(path), coverage: coverage.New()}
	f, err := os.Open(path)
	if err != nil {
		return s, err
	}
	vectors, err := loadVectors(f)
	_ = f.Close()
	if err != nil {
		return s, fmt.Errorf("%s: %w", s.name, err)
	}
	s.vectors = len(vectors)
	slog.Info("check", "dump", s.name, "vectors", s.vectors, "nan", cfg.nanStyle)

	log := fpcheck.NewMismatchLog(cfg.capacity)
	c := fpcheck.New(&softfloat.Context{NaNStyle: cfg.nanStyle}, log)
	for i, d := range vectors {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return s, err
			}
		}
		r := c.Verdict(d.v)
		s.coverage.Add(&r)
		if r.Pass() {
			continue
		}
		s.failed++
		// The log is the slot counter: the next free slot is the number of
		// mismatches recorded so far.
		slot := log.Next()
		if err := log.Record(slot, r.Record()); err != nil {
			if s.dropped == 0 {
				slog.Warn("mismatch log full, further mismatches are only counted", "dump", s.name, "line", d.line, "err", err)
			}
			s.dropped++
			continue
		}
		rec, _ := log.Get(slot)
		slog.Debug("mismatch", "dump", s.name, "line", d.line, "slot", slot, "flags_diff", r.FlagsDiff, "record", rec.String())
	}
	s.recorded = log.Len()

	base := reportBase(cfg.outDir, path)
	s.report = base + ".result.log"
	if err := log.ExportReport(s.report, s.recorded); err != nil {
		return s, err
	}
	if cfg.json {
		var b bytes.Buffer
		if err := log.WriteJSON(&b, s.recorded); err != nil {
			return s, err
		}
		if err := os.WriteFile(base+".result.json", b.Bytes(), 0o666); err != nil {
			return s, err
		}
		if err := writeJSON(base+".coverage.json", s.coverage); err != nil {
			return s, err
		}
	}
	for _, fc := range s.coverage.Formats {
		if fc.Vectors == 0 {
			continue
		}
		slog.Info("coverage", "dump", s.name, "format", fc.Format,
			"vectors", fc.Vectors, "failed", fc.Failed,
			"operand_exponents", fmt.Sprintf("%d/%d", fc.OperandExponents.Effective(), fc.OperandExponents.Len),
			"result_exponents", fmt.Sprintf("%d/%d", fc.ResultExponents.Effective(), fc.ResultExponents.Len),
			"flag_sets", fmt.Sprintf("%d/%d", fc.Flags.Effective(), len(fc.Flags.Counts)),
			"uf_exempt", fc.UnderflowExempt)
	}
	slog.Info("done", "dump", s.name, "vectors", s.vectors, "failed", s.failed, "dropped", s.dropped, "report", s.report)
	return s, nil
}

// runAll processes the dumps concurrently. Each dump is an independent run.
func runAll(ctx context.Context, paths []string, cfg config) ([]summary, error) {
	if err := os.MkdirAll(cfg.outDir, 0o777); err != nil {
		return nil, err
	}
	summaries := make([]summary, len(paths))
	eg, ctx2 := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		eg.Go(func() error {
			var err error
			summaries[i], err = runDump(ctx2, p, cfg)
			return err
		})
	}
	err := eg.Wait()
	return summaries, err
}
