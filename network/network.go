// SPDX-License-Identifier: MIT

package network

import (
	"fmt"
	"math/cmplx"
	"strings"
)

// DefaultZ0 is the reference impedance assigned to every port of a new Network.
const DefaultZ0 = 50.0

// Network is an F×k×k block of complex S-parameters on a frequency grid.
// s holds F*k*k values in row-major order (f, i, j); z0 holds F*k values (f, port).
type Network struct {
	name  string       // label used in diagnostics
	freq  []float64    // frequency grid in Hz, len F
	ports int          // k
	s     []complex128 // len F*k*k
	z0    []complex128 // len F*k
}

// New creates a zero-valued k-port Network on the given grid.
// The grid is copied; every port gets DefaultZ0.
// Stage 1 (Validate): ports > 0, grid non-empty and finite.
// Stage 2 (Prepare): allocate S and z0 buffers.
// Complexity: O(F*k²) time and memory.
func New(name string, freq []float64, ports int) (*Network, error) {
	if ports <= 0 {
		return nil, networkErrorf("New", ErrBadShape)
	}
	if err := ValidateGrid(freq); err != nil {
		return nil, networkErrorf("New", err)
	}

	n := &Network{
		name:  name,
		freq:  append([]float64(nil), freq...),
		ports: ports,
		s:     make([]complex128, len(freq)*ports*ports),
		z0:    make([]complex128, len(freq)*ports),
	}
	for idx := range n.z0 {
		n.z0[idx] = complex(DefaultZ0, 0)
	}

	return n, nil
}

// FromSlices builds a Network from a nested [f][i][j] array.
// Every s[f] must be k×k with k = len(s[0]); len(s) must equal len(freq).
// Complexity: O(F*k²).
func FromSlices(name string, freq []float64, s [][][]complex128) (*Network, error) {
	if len(s) != len(freq) || len(s) == 0 {
		return nil, networkErrorf("FromSlices", ErrDimensionMismatch)
	}
	k := len(s[0])
	n, err := New(name, freq, k)
	if err != nil {
		return nil, networkErrorf("FromSlices", err)
	}

	var f, i int
	for f = 0; f < len(s); f++ {
		if len(s[f]) != k {
			return nil, networkErrorf("FromSlices", ErrDimensionMismatch)
		}
		for i = 0; i < k; i++ {
			if len(s[f][i]) != k {
				return nil, networkErrorf("FromSlices", ErrDimensionMismatch)
			}
			for _, v := range s[f][i] {
				if cmplx.IsNaN(v) || cmplx.IsInf(v) {
					return nil, networkErrorf("FromSlices", ErrNaNInf)
				}
			}
			copy(n.s[n.offset(f, i, 0):], s[f][i])
		}
	}

	return n, nil
}

// Name returns the diagnostic label.
func (n *Network) Name() string { return n.name }

// SetName replaces the diagnostic label.
func (n *Network) SetName(name string) { n.name = name }

// Ports returns the number of ports k.
func (n *Network) Ports() int { return n.ports }

// Len returns the number of frequency points F.
func (n *Network) Len() int { return len(n.freq) }

// Frequencies returns a copy of the frequency grid in Hz.
func (n *Network) Frequencies() []float64 {
	return append([]float64(nil), n.freq...)
}

// offset is the flat index of (f, i, j); callers guarantee bounds.
func (n *Network) offset(f, i, j int) int {
	return (f*n.ports+i)*n.ports + j
}

// indexOf validates (f, i, j) and returns the flat S index.
func (n *Network) indexOf(method string, f, i, j int) (int, error) {
	if f < 0 || f >= len(n.freq) {
		return 0, fmt.Errorf("Network.%s(%d,%d,%d): %w", method, f, i, j, ErrOutOfRange)
	}
	if i < 0 || i >= n.ports || j < 0 || j >= n.ports {
		return 0, fmt.Errorf("Network.%s(%d,%d,%d): %w", method, f, i, j, ErrOutOfRange)
	}

	return n.offset(f, i, j), nil
}

// At returns S_ij at frequency index f (all 0-based).
// Complexity: O(1).
func (n *Network) At(f, i, j int) (complex128, error) {
	idx, err := n.indexOf("At", f, i, j)
	if err != nil {
		return 0, err
	}

	return n.s[idx], nil
}

// Set assigns S_ij at frequency index f. NaN/Inf components are rejected.
// Complexity: O(1).
func (n *Network) Set(f, i, j int, v complex128) error {
	idx, err := n.indexOf("Set", f, i, j)
	if err != nil {
		return err
	}
	if cmplx.IsNaN(v) || cmplx.IsInf(v) {
		return fmt.Errorf("Network.Set(%d,%d,%d): %w", f, i, j, ErrNaNInf)
	}
	n.s[idx] = v

	return nil
}

// Param returns a copy of the S_ij trace over the whole grid.
// Complexity: O(F).
func (n *Network) Param(i, j int) ([]complex128, error) {
	if _, err := n.indexOf("Param", 0, i, j); err != nil {
		return nil, err
	}
	out := make([]complex128, len(n.freq))
	for f := range out {
		out[f] = n.s[n.offset(f, i, j)]
	}

	return out, nil
}

// Z0 returns the reference impedance of port at frequency index f.
func (n *Network) Z0(f, port int) (complex128, error) {
	if f < 0 || f >= len(n.freq) || port < 0 || port >= n.ports {
		return 0, fmt.Errorf("Network.Z0(%d,%d): %w", f, port, ErrOutOfRange)
	}

	return n.z0[f*n.ports+port], nil
}

// SetZ0 assigns the reference impedance of port at frequency index f.
func (n *Network) SetZ0(f, port int, z complex128) error {
	if f < 0 || f >= len(n.freq) || port < 0 || port >= n.ports {
		return fmt.Errorf("Network.SetZ0(%d,%d): %w", f, port, ErrOutOfRange)
	}
	if cmplx.IsNaN(z) || cmplx.IsInf(z) {
		return fmt.Errorf("Network.SetZ0(%d,%d): %w", f, port, ErrNaNInf)
	}
	n.z0[f*n.ports+port] = z

	return nil
}

// SetUniformZ0 assigns z to every port at every frequency.
func (n *Network) SetUniformZ0(z complex128) error {
	if cmplx.IsNaN(z) || cmplx.IsInf(z) {
		return networkErrorf("Network.SetUniformZ0", ErrNaNInf)
	}
	for idx := range n.z0 {
		n.z0[idx] = z
	}

	return nil
}

// UniformZ0 reports the common reference impedance when every port at every
// frequency carries the same value.
func (n *Network) UniformZ0() (complex128, bool) {
	z := n.z0[0]
	for _, v := range n.z0[1:] {
		if v != z {
			return 0, false
		}
	}

	return z, true
}

// Subnetwork returns a new Network restricted to the given 0-based ports, in
// the given order. Local port i of the result is ports[i] of n.
// Complexity: O(F*m²) for m = len(ports).
func (n *Network) Subnetwork(ports ...int) (*Network, error) {
	if len(ports) == 0 {
		return nil, networkErrorf("Network.Subnetwork", ErrBadShape)
	}
	seen := make(map[int]struct{}, len(ports))
	for _, p := range ports {
		if p < 0 || p >= n.ports {
			return nil, fmt.Errorf("Network.Subnetwork(%d): %w", p, ErrOutOfRange)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("Network.Subnetwork(%d): %w", p, ErrDuplicatePort)
		}
		seen[p] = struct{}{}
	}

	sub, _ := New(n.name, n.freq, len(ports)) // grid already validated
	var f, li, lj int
	for f = 0; f < len(n.freq); f++ {
		for li = 0; li < len(ports); li++ {
			for lj = 0; lj < len(ports); lj++ {
				sub.s[sub.offset(f, li, lj)] = n.s[n.offset(f, ports[li], ports[lj])]
			}
			sub.z0[f*sub.ports+li] = n.z0[f*n.ports+ports[li]]
		}
	}

	return sub, nil
}

// Clone returns a deep copy.
// Complexity: O(F*k²).
func (n *Network) Clone() *Network {
	return &Network{
		name:  n.name,
		freq:  append([]float64(nil), n.freq...),
		ports: n.ports,
		s:     append([]complex128(nil), n.s...),
		z0:    append([]complex128(nil), n.z0...),
	}
}

// String implements fmt.Stringer with a one-line summary.
func (n *Network) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-Port Network: '%s', %d pts", n.ports, n.name, len(n.freq))
	fmt.Fprintf(&b, ", %g-%g Hz", n.freq[0], n.freq[len(n.freq)-1])
	if z, ok := n.UniformZ0(); ok {
		fmt.Fprintf(&b, ", z0=%g", z)
	}

	return b.String()
}
