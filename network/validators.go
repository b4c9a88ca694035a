// SPDX-License-Identifier: MIT
// Package: network
//
// Purpose:
//  - Single source of truth for grid and comparison checks.
//  - Return plain sentinel errors so call sites can wrap uniformly.
//
// Determinism & Performance:
//  - All checks are pure and allocate nothing.

package network

import (
	"math"
	"math/cmplx"
)

// Numeric policy defaults, matching numpy.allclose.
const (
	// DefaultRTol is the relative tolerance of SameGrid and AllClose.
	DefaultRTol = 1e-5

	// DefaultATol is the absolute tolerance of SameGrid and AllClose.
	DefaultATol = 1e-8
)

// ValidateGrid ensures a frequency grid is non-empty and finite.
// Returns ErrEmptyGrid or ErrNaNInf. Complexity: O(F).
func ValidateGrid(freq []float64) error {
	if len(freq) == 0 {
		return ErrEmptyGrid
	}
	for _, f := range freq {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrNaNInf
		}
	}

	return nil
}

// SameGrid reports whether a and b have the same length and every point
// satisfies |a-b| ≤ atol + rtol·|b|. Negative tolerances are taken as absolute.
// Complexity: O(F).
func SameGrid(a, b []float64, rtol, atol float64) bool {
	if len(a) != len(b) {
		return false
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	for idx := range a {
		if math.Abs(a[idx]-b[idx]) > atol+rtol*math.Abs(b[idx]) {
			return false
		}
	}

	return true
}

// AllClose checks element-wise |a-b| ≤ atol + rtol·|b| over the S arrays of
// two networks with identical shape and grid length.
// Returns (false, error) on nil or shape mismatch. Complexity: O(F*k²).
func AllClose(a, b *Network, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, networkErrorf("AllClose", ErrNaNInf)
	}
	if a == nil || b == nil {
		return false, networkErrorf("AllClose", ErrNilNetwork)
	}
	if a.ports != b.ports || len(a.freq) != len(b.freq) {
		return false, networkErrorf("AllClose", ErrDimensionMismatch)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	for idx := range a.s {
		if cmplx.Abs(a.s[idx]-b.s[idx]) > atol+rtol*cmplx.Abs(b.s[idx]) {
			return false, nil // early exit on first violation
		}
	}

	return true, nil
}
