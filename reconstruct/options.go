// SPDX-License-Identifier: MIT

// Package reconstruct: functional configuration for Reconstruct.
//   - Option / Options (functional options with unexported state),
//   - documented defaults (constants),
//   - WithX constructors that panic on nonsensical values (programmer error),
//   - gatherOptions, the single place where defaults are applied.
package reconstruct

import (
	"math"

	"github.com/katalvlaran/smatmerge/network"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultFrequencyRTol is the relative tolerance of the grid agreement check.
	DefaultFrequencyRTol = network.DefaultRTol

	// DefaultFrequencyATol is the absolute tolerance (Hz) of the grid agreement check.
	DefaultFrequencyATol = network.DefaultATol

	// DefaultReferenceImpedance is the nominal impedance written on every port
	// of the fused network, regardless of the inputs' impedances.
	DefaultReferenceImpedance = 50.0

	// DefaultAllowDuplicatePorts keeps duplicate-port validation on.
	DefaultAllowDuplicatePorts = false
)

const (
	panicToleranceInvalid = "reconstruct: WithFrequencyTolerance: tolerances must be finite, non-negative"
	panicImpedanceInvalid = "reconstruct: WithReferenceImpedance: z0 must be finite and positive"
)

// Option mutates internal options.
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	rtol, atol     float64
	z0             float64
	allowDuplicate bool
	name           string // empty ⇒ reconstructed_<N>port
}

// WithFrequencyTolerance sets the rtol/atol pair of the grid check
// |a-b| ≤ atol + rtol·|b|. Panics on negative or non-finite values.
func WithFrequencyTolerance(rtol, atol float64) Option {
	if !finiteNonNegative(rtol) || !finiteNonNegative(atol) {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.rtol, o.atol = rtol, atol }
}

// WithReferenceImpedance overrides the nominal impedance of the fused network.
func WithReferenceImpedance(z0 float64) Option {
	if !finiteNonNegative(z0) || z0 == 0 {
		panic(panicImpedanceInvalid)
	}

	return func(o *Options) { o.z0 = z0 }
}

// WithAllowDuplicatePorts skips the duplicate-port check. A repeated DUT port
// then receives the same local data under both of its local indices, which is
// rarely meaningful; out-of-range ports are still rejected.
func WithAllowDuplicatePorts() Option {
	return func(o *Options) { o.allowDuplicate = true }
}

// WithName sets the label of the fused network.
func WithName(name string) Option {
	return func(o *Options) { o.name = name }
}

// gatherOptions applies user setters on top of the defaults (last-writer-wins).
func gatherOptions(user ...Option) Options {
	o := Options{
		rtol:           DefaultFrequencyRTol,
		atol:           DefaultFrequencyATol,
		z0:             DefaultReferenceImpedance,
		allowDuplicate: DefaultAllowDuplicatePorts,
	}
	for _, set := range user {
		set(&o)
	}

	return o
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
