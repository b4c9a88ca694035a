// SPDX-License-Identifier: MIT
// Package network: sentinel error set.
// Every message is prefixed with "network: ..." so it can be grepped in logs.
// Methods wrap these with networkErrorf; callers match via errors.Is.

package network

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a port count is not positive.
	ErrBadShape = errors.New("network: invalid shape")

	// ErrEmptyGrid is returned when a frequency grid has no points.
	ErrEmptyGrid = errors.New("network: empty frequency grid")

	// ErrOutOfRange indicates a frequency or port index outside valid bounds.
	ErrOutOfRange = errors.New("network: index out of range")

	// ErrDimensionMismatch indicates data whose shape disagrees with the grid
	// or port count, or two networks that cannot be compared.
	ErrDimensionMismatch = errors.New("network: dimension mismatch")

	// ErrNaNInf signals a NaN or ±Inf where a finite value is required.
	ErrNaNInf = errors.New("network: NaN or Inf encountered")

	// ErrNilNetwork indicates a nil *Network argument.
	ErrNilNetwork = errors.New("network: nil network")

	// ErrDuplicatePort is returned by Subnetwork when a port is requested twice.
	ErrDuplicatePort = errors.New("network: duplicate port")
)

// networkErrorf wraps an underlying error with the method tag.
func networkErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
