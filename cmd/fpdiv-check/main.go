// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// fpdiv-check compares hardware divider result dumps against the reference
// engine and writes a mismatch report per dump.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/maruel/fpdiv-check/fpcheck"
	"github.com/maruel/fpdiv-check/softfloat"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// errMismatch is returned when at least one vector failed.
var errMismatch = errors.New("mismatches found")

func initLogging(verbose bool) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}

func parseNaNStyle(s string) (softfloat.NaNStyle, error) {
	switch strings.ToLower(s) {
	case "propagate":
		return softfloat.PropagateNaN, nil
	case "default":
		return softfloat.DefaultNaN, nil
	default:
		return 0, fmt.Errorf("invalid -nan %q, use propagate or default", s)
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	verbose := flag.Bool("v", false, "Log every mismatch")
	out := flag.String("out", ".", "Directory where the reports are written")
	jsonOut := flag.Bool("json", false, "Also write JSON mismatch and coverage reports")
	nan := flag.String("nan", "propagate", "Reference engine NaN style: propagate or default")
	capacity := flag.Int("capacity", fpcheck.DefaultCapacity, "Number of mismatches kept per dump")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: fpdiv-check [flags] <dump>...\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Each dump line is: <format> <rm> <a> <b> <result> <flags>, values in hex.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	initLogging(*verbose)

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("specify at least one dump")
	}
	style, err := parseNaNStyle(*nan)
	if err != nil {
		return err
	}
	if *capacity <= 0 {
		return fmt.Errorf("invalid -capacity %d", *capacity)
	}
	cfg := config{outDir: *out, json: *jsonOut, nanStyle: style, capacity: *capacity}
	summaries, err := runAll(ctx, flag.Args(), cfg)
	if err != nil {
		return err
	}
	failed := 0
	for _, s := range summaries {
		failed += s.failed
	}
	if failed != 0 {
		return fmt.Errorf("%w: %d vectors failed", errMismatch, failed)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "fpdiv-check: %s\n", err)
		if errors.Is(err, errMismatch) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
