// SPDX-License-Identifier: MIT
// Package touchstone: sentinel error set ("touchstone: ..." prefix).
// Parse failures carry the 1-based line number in *ParseError.

package touchstone

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownExtension is returned when the port count cannot be taken
	// from a file name (not *.sNp) and WithPorts was not given.
	ErrUnknownExtension = errors.New("touchstone: cannot infer port count from extension")

	// ErrBadPortCount indicates a non-positive port count.
	ErrBadPortCount = errors.New("touchstone: port count must be positive")

	// ErrBadOptionLine indicates an unknown token or missing value in the "#" line.
	ErrBadOptionLine = errors.New("touchstone: malformed option line")

	// ErrUnsupportedParameter indicates Y/Z/H/G data; only S is handled.
	ErrUnsupportedParameter = errors.New("touchstone: only S parameters are supported")

	// ErrUnsupportedVersion indicates Touchstone v2 keyword sections.
	ErrUnsupportedVersion = errors.New("touchstone: version 2 keywords are not supported")

	// ErrBadNumber indicates a data token that is not a finite float.
	ErrBadNumber = errors.New("touchstone: invalid number")

	// ErrIncompleteRecord indicates data ending in the middle of a record.
	ErrIncompleteRecord = errors.New("touchstone: incomplete data record")

	// ErrNoData indicates a file without any data record.
	ErrNoData = errors.New("touchstone: no data")

	// ErrNonUniformImpedance is returned by Write for networks whose ports
	// or frequencies carry different, or complex, reference impedances.
	ErrNonUniformImpedance = errors.New("touchstone: reference impedance must be uniform and real")

	// ErrNilNetwork is returned by Write for a nil network.
	ErrNilNetwork = errors.New("touchstone: nil network")
)

// ParseError locates a parse failure.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// touchstoneErrorf wraps err with an operation tag.
func touchstoneErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
