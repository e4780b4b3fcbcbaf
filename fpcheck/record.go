// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fpcheck

import (
	"errors"
	"fmt"

	"github.com/maruel/fpdiv-check/floatx"
)

// DefaultCapacity is the number of mismatches kept by a test run.
const DefaultCapacity = 10

var (
	// ErrCapacityExceeded is returned when a slot index is outside the log.
	ErrCapacityExceeded = errors.New("mismatch log capacity exceeded")
	// ErrSlotUsed is returned when recording into a slot that already holds a
	// record.
	ErrSlotUsed = errors.New("mismatch log slot already recorded")
)

// CheckRecord is one failing vector.
//
// Operands and results are stored truncated to the format width.
type CheckRecord struct {
	OperandA        uint64        `json:"operandA"`
	OperandB        uint64        `json:"operandB"`
	Format          floatx.Format `json:"format"`
	RoundingMode    uint32        `json:"roundingMode"`
	HardwareResult  uint64        `json:"hardwareResult"`
	HardwareFlags   floatx.Flags  `json:"hardwareFlags"`
	ReferenceResult uint64        `json:"referenceResult"`
	ReferenceFlags  floatx.Flags  `json:"referenceFlags"`
}

func (r *CheckRecord) String() string {
	f := r.Format
	w := f.HexWidth()
	return fmt.Sprintf("%s rm=%d %0*X/%0*X (%g/%g): hw=%0*X %s (%g) ref=%0*X %s (%g)",
		f, r.RoundingMode,
		w, r.OperandA, w, r.OperandB, f.Float64(r.OperandA), f.Float64(r.OperandB),
		w, r.HardwareResult, r.HardwareFlags, f.Float64(r.HardwareResult),
		w, r.ReferenceResult, r.ReferenceFlags, f.Float64(r.ReferenceResult))
}

// MismatchLog is a fixed capacity, append only store of CheckRecord.
//
// Slot indexes are chosen by the caller. A slot is written at most once and
// records are never removed. It is not safe for concurrent use.
type MismatchLog struct {
	slots []CheckRecord
	used  []bool
	n     int
}

// NewMismatchLog returns a log holding up to capacity records. A capacity of
// 0 or less selects DefaultCapacity.
func NewMismatchLog(capacity int) *MismatchLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MismatchLog{
		slots: make([]CheckRecord, capacity),
		used:  make([]bool, capacity),
	}
}

// Record stores rec at index.
//
// It fails with ErrCapacityExceeded when index is not in [0, Cap()) and with
// ErrSlotUsed when the slot was already written. The log is left unmodified
// on error.
func (l *MismatchLog) Record(index int, rec CheckRecord) error {
	if index < 0 || index >= len(l.slots) {
		return fmt.Errorf("%w: index %d, capacity %d", ErrCapacityExceeded, index, len(l.slots))
	}
	if l.used[index] {
		return fmt.Errorf("%w: index %d", ErrSlotUsed, index)
	}
	l.slots[index] = rec
	l.used[index] = true
	l.n++
	return nil
}

// Get returns the record at index, if any.
func (l *MismatchLog) Get(index int) (CheckRecord, bool) {
	if index < 0 || index >= len(l.slots) || !l.used[index] {
		return CheckRecord{}, false
	}
	return l.slots[index], true
}

// Len returns the number of records stored.
func (l *MismatchLog) Len() int {
	return l.n
}

// Cap returns the maximum number of records.
func (l *MismatchLog) Cap() int {
	return len(l.slots)
}

// Full reports whether every slot holds a record.
func (l *MismatchLog) Full() bool {
	return l.n == len(l.slots)
}

// Next returns the lowest free slot index, or Cap() when the log is full.
func (l *MismatchLog) Next() int {
	for i, u := range l.used {
		if !u {
			return i
		}
	}
	return len(l.slots)
}

// Records returns slots [0, count). Free slots are nil.
func (l *MismatchLog) Records(count int) ([]*CheckRecord, error) {
	if err := l.checkCount(count); err != nil {
		return nil, err
	}
	out := make([]*CheckRecord, count)
	for i := range count {
		if l.used[i] {
			r := l.slots[i]
			out[i] = &r
		}
	}
	return out, nil
}

func (l *MismatchLog) checkCount(count int) error {
	if count < 0 || count > len(l.slots) {
		return fmt.Errorf("%w: count %d, capacity %d", ErrCapacityExceeded, count, len(l.slots))
	}
	return nil
}
