// SPDX-License-Identifier: MIT
// Package reconstruct: pure queries over port mappings.
//
// Front ends use these to decide whether to warn, ask or refuse before a
// merge (a file selecting every port, DUT ports nobody measured). None of
// them read measurement data.

package reconstruct

import "sort"

// CoveredPorts returns the sorted union of DUT ports named by any mapping.
func CoveredPorts(mappings []PortMapping) []int {
	set := make(map[int]struct{})
	for _, m := range mappings {
		for _, p := range m {
			set[p] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Ints(out)

	return out
}

// UncoveredPorts returns, in ascending order, the DUT ports in [1, n] that no
// mapping names. Their rows and columns of the fused matrix will be zero.
func UncoveredPorts(n int, mappings []PortMapping) []int {
	covered := make([]bool, n+1)
	for _, m := range mappings {
		for _, p := range m {
			if p >= 1 && p <= n {
				covered[p] = true
			}
		}
	}
	var out []int
	for p := 1; p <= n; p++ {
		if !covered[p] {
			out = append(out, p)
		}
	}

	return out
}

// IsFullPortSet reports whether mapping names every DUT port 1..n, i.e. the
// file may already be a full n-port measurement.
func IsFullPortSet(mapping PortMapping, n int) bool {
	if n < 1 {
		return false
	}
	return len(UncoveredPorts(n, []PortMapping{mapping})) == 0
}

// PlanCoverage computes the coverage table a reconstruction with these
// mappings will produce, without any measurement data.
// Returns ErrBadPortCount, or ErrPortOutOfRange/ErrDuplicatePort wrapped with
// the mapping index.
func PlanCoverage(n int, mappings []PortMapping, opts ...Option) (*Coverage, error) {
	o := gatherOptions(opts...)
	cov, err := NewCoverage(n)
	if err != nil {
		return nil, err
	}
	for idx, m := range mappings {
		if err = m.Validate(n, o.allowDuplicate); err != nil {
			return nil, &MeasurementError{Index: idx, Detail: "mapping " + m.String(), Err: err}
		}
		g := zeroBased(m)
		for _, gi := range g {
			for _, gj := range g {
				cov.inc(gi, gj)
			}
		}
	}

	return cov, nil
}
