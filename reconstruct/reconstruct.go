// SPDX-License-Identifier: MIT

package reconstruct

import (
	"fmt"

	"github.com/katalvlaran/smatmerge/network"
)

// Reconstruct fuses partial measurements into a full n-port network.
//
// measurements[idx] is a k-port network whose local port i was connected to
// DUT port mappings[idx][i] (1-based). The first measurement's grid is the
// reference grid; every other grid must match it within the configured
// tolerance. No resampling is performed.
//
// Algorithm:
//  1. Validate everything up front (see validate); fail on the first violation.
//  2. For every measurement and every ordered local pair (li, lj), including
//     the diagonal, add S[:, li, lj] into sum[:, g[li], g[lj]] and count it.
//  3. Cells with count > 0 become sum/count at each frequency; cells with
//     count 0 are written as exactly 0.
//  4. Every port of the result gets the nominal reference impedance.
//
// The inputs are never mutated; the result owns fresh storage.
//
// Errors: ErrEmptyInput, ErrLengthMismatch, ErrBadPortCount, and per
// measurement a *MeasurementError wrapping ErrNilMeasurement,
// ErrPortCountMismatch, ErrPortOutOfRange, ErrDuplicatePort or
// ErrFrequencyGridMismatch.
//
// Complexity: O(Σ F·k² + F·N²) time, O(F·N²) memory.
func Reconstruct(measurements []*network.Network, mappings []PortMapping, n int, opts ...Option) (*Result, error) {
	o := gatherOptions(opts...)
	if err := validate(measurements, mappings, n, o); err != nil {
		return nil, err
	}

	ref := measurements[0]
	points := ref.Len()
	stride := n * n

	// Accumulate.
	sum := make([]complex128, points*stride)
	cov, _ := NewCoverage(n) // n ≥ 1 checked above
	var (
		f, li, lj int
		g         []int
		v         complex128
	)
	for idx, m := range measurements {
		g = zeroBased(mappings[idx])
		k := len(g)
		for li = 0; li < k; li++ {
			for lj = 0; lj < k; lj++ {
				cell := g[li]*n + g[lj]
				for f = 0; f < points; f++ {
					v, _ = m.At(f, li, lj) // bounds guaranteed by validate
					sum[f*stride+cell] += v
				}
				cov.inc(g[li], g[lj])
			}
		}
	}

	// Average into a fresh network.
	name := o.name
	if name == "" {
		name = fmt.Sprintf("reconstructed_%dport", n)
	}
	out, err := network.New(name, ref.Frequencies(), n)
	if err != nil {
		return nil, err
	}
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			count := cov.counts[i*n+j]
			for f = 0; f < points; f++ {
				v = 0
				if count > 0 {
					v = sum[f*stride+i*n+j] / complex(float64(count), 0)
				}
				if err = out.Set(f, i, j, v); err != nil {
					// Finite inputs whose sum overflows.
					return nil, fmt.Errorf("S%d%d at %g Hz: %w", i+1, j+1, out.Frequencies()[f], err)
				}
			}
		}
	}
	if err = out.SetUniformZ0(complex(o.z0, 0)); err != nil {
		return nil, err
	}

	return &Result{Network: out, Coverage: cov}, nil
}

// validate checks every structural precondition before any accumulation.
// Order: empty → length → n → per measurement (nil → port count → mapping → grid).
func validate(measurements []*network.Network, mappings []PortMapping, n int, o Options) error {
	if len(measurements) == 0 {
		return ErrEmptyInput
	}
	if len(measurements) != len(mappings) {
		return fmt.Errorf("%d measurements, %d mappings: %w", len(measurements), len(mappings), ErrLengthMismatch)
	}
	if n < 1 {
		return fmt.Errorf("n=%d: %w", n, ErrBadPortCount)
	}

	var refGrid []float64
	for idx, m := range measurements {
		if m == nil {
			return &MeasurementError{Index: idx, Err: ErrNilMeasurement}
		}
		if m.Ports() != len(mappings[idx]) {
			return measurementErrorf(idx, m.Name(), ErrPortCountMismatch,
				"%d-port but port set has length %d", m.Ports(), len(mappings[idx]))
		}
		if err := mappings[idx].Validate(n, o.allowDuplicate); err != nil {
			return &MeasurementError{Index: idx, Label: m.Name(), Detail: "mapping " + mappings[idx].String(), Err: err}
		}
		if idx == 0 {
			refGrid = m.Frequencies()
			continue
		}
		if !network.SameGrid(m.Frequencies(), refGrid, o.rtol, o.atol) {
			return gridError(idx, m, refGrid, measurements[0].Name(), o)
		}
	}

	return nil
}

// gridError describes how m's grid differs from the reference: the point
// counts, or the first frequency outside tolerance when the counts agree.
func gridError(idx int, m *network.Network, ref []float64, refName string, o Options) error {
	freq := m.Frequencies()
	if len(freq) != len(ref) {
		return measurementErrorf(idx, m.Name(), ErrFrequencyGridMismatch,
			"%d points vs %d in reference %q", len(freq), len(ref), refName)
	}
	for f := range freq {
		if !network.SameGrid(freq[f:f+1], ref[f:f+1], o.rtol, o.atol) {
			return measurementErrorf(idx, m.Name(), ErrFrequencyGridMismatch,
				"frequency[%d] = %g Hz vs %g Hz in reference %q", f, freq[f], ref[f], refName)
		}
	}

	return measurementErrorf(idx, m.Name(), ErrFrequencyGridMismatch, "grid differs from reference %q", refName)
}

// zeroBased converts 1-based DUT ports to 0-based indices.
func zeroBased(m PortMapping) []int {
	g := make([]int, len(m))
	for i, p := range m {
		g[i] = p - 1
	}

	return g
}
