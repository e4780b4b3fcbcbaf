// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fpcheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteReport writes slots [0, count) as text.
//
// Each slot is a "[i]:" line followed by one "name = value" line per field,
// values as 16 hexadecimal digits. Free slots are written as zeros.
func (l *MismatchLog) WriteReport(w io.Writer, count int) error {
	if err := l.checkCount(count); err != nil {
		return err
	}
	for i := range count {
		r := &l.slots[i]
		fields := [...]struct {
			name string
			v    uint64
		}{
			{"operandA", r.OperandA},
			{"operandB", r.OperandB},
			{"format", uint64(r.Format.Code())},
			{"roundingMode", uint64(r.RoundingMode)},
			{"hardwareResult", r.HardwareResult},
			{"hardwareFlags", uint64(r.HardwareFlags)},
			{"referenceResult", r.ReferenceResult},
			{"referenceFlags", uint64(r.ReferenceFlags)},
		}
		if _, err := fmt.Fprintf(w, "[%d]:\n", i); err != nil {
			return err
		}
		for _, f := range fields {
			if _, err := fmt.Fprintf(w, "%s = %016X\n", f.name, f.v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportReport writes the text report of slots [0, count) to path, replacing
// any previous content. The log itself is not modified.
func (l *MismatchLog) ExportReport(path string, count int) error {
	var b bytes.Buffer
	if err := l.WriteReport(&b, count); err != nil {
		return err
	}
	return os.WriteFile(path, b.Bytes(), 0o666)
}

// WriteJSON writes slots [0, count) as a JSON array. Free slots are null.
func (l *MismatchLog) WriteJSON(w io.Writer, count int) error {
	records, err := l.Records(count)
	if err != nil {
		return err
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
