// SPDX-License-Identifier: MIT
// Package reconstruct: sentinel error set.
// Structural input failures only; nothing here is transient or retried.
// Per-measurement failures are wrapped in *MeasurementError so callers can
// recover the offending index and label; errors.Is still matches the sentinel.

package reconstruct

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when no measurements are supplied.
	ErrEmptyInput = errors.New("reconstruct: no measurements provided")

	// ErrLengthMismatch indicates measurements and mappings of different length.
	ErrLengthMismatch = errors.New("reconstruct: measurements and port mappings differ in length")

	// ErrBadPortCount indicates a DUT port count below 1.
	ErrBadPortCount = errors.New("reconstruct: DUT port count must be positive")

	// ErrNilMeasurement indicates a nil measurement in the input list.
	ErrNilMeasurement = errors.New("reconstruct: nil measurement")

	// ErrPortCountMismatch indicates a mapping whose length differs from the
	// measurement's local port count.
	ErrPortCountMismatch = errors.New("reconstruct: port mapping length does not match measurement port count")

	// ErrFrequencyGridMismatch indicates a frequency grid that differs from the
	// first measurement's grid in point count or values.
	ErrFrequencyGridMismatch = errors.New("reconstruct: all measurements must share the same frequency grid")

	// ErrPortOutOfRange indicates a mapping entry outside [1, n].
	ErrPortOutOfRange = errors.New("reconstruct: DUT port out of range")

	// ErrDuplicatePort indicates the same DUT port twice within one mapping.
	ErrDuplicatePort = errors.New("reconstruct: duplicate DUT port in mapping")
)

// MeasurementError identifies the measurement that failed validation.
type MeasurementError struct {
	Index  int    // position in the input list, 0-based
	Label  string // measurement name
	Detail string // human-readable specifics, may be empty
	Err    error  // sentinel
}

func (e *MeasurementError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("measurement %d (%q): %v", e.Index, e.Label, e.Err)
	}

	return fmt.Sprintf("measurement %d (%q): %s: %v", e.Index, e.Label, e.Detail, e.Err)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// measurementErrorf builds a *MeasurementError with a formatted detail.
func measurementErrorf(idx int, label string, err error, format string, args ...any) error {
	return &MeasurementError{Index: idx, Label: label, Detail: fmt.Sprintf(format, args...), Err: err}
}
