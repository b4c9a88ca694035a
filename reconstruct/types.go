// SPDX-License-Identifier: MIT

package reconstruct

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/smatmerge/network"
)

// PortMapping lists, for each local port of a measurement in order, the
// 1-based DUT port it was connected to. {1, 3, 4, 5} means local port 0 is
// DUT port 1, local port 1 is DUT port 3, and so on.
type PortMapping []int

// Validate checks every entry lies in [1, n] and, unless allowDuplicate,
// that no DUT port appears twice. Returns ErrPortOutOfRange or ErrDuplicatePort
// wrapped with the offending value.
func (m PortMapping) Validate(n int, allowDuplicate bool) error {
	seen := make([]bool, n+1)
	for _, p := range m {
		if p < 1 || p > n {
			return fmt.Errorf("port %d not in [1,%d]: %w", p, n, ErrPortOutOfRange)
		}
		if seen[p] && !allowDuplicate {
			return fmt.Errorf("port %d: %w", p, ErrDuplicatePort)
		}
		seen[p] = true
	}

	return nil
}

// String renders the mapping the way it is typed on the command line: "1,2,3,4".
func (m PortMapping) String() string {
	parts := make([]string, len(m))
	for i, p := range m {
		parts[i] = strconv.Itoa(p)
	}

	return strings.Join(parts, ",")
}

// Coverage is an N×N table counting, per global cell (i, j), how many
// (measurement, local pair) observations contributed to it. Indices are 0-based.
type Coverage struct {
	n      int
	counts []int // row-major, len n*n
}

// NewCoverage returns an all-zero n×n table.
func NewCoverage(n int) (*Coverage, error) {
	if n < 1 {
		return nil, ErrBadPortCount
	}

	return &Coverage{n: n, counts: make([]int, n*n)}, nil
}

// Ports returns N.
func (c *Coverage) Ports() int { return c.n }

// At returns the count of cell (i, j), or ErrPortOutOfRange.
func (c *Coverage) At(i, j int) (int, error) {
	if i < 0 || i >= c.n || j < 0 || j >= c.n {
		return 0, fmt.Errorf("Coverage.At(%d,%d): %w", i, j, ErrPortOutOfRange)
	}

	return c.counts[i*c.n+j], nil
}

// inc adds one observation to (i, j); callers guarantee bounds.
func (c *Coverage) inc(i, j int) { c.counts[i*c.n+j]++ }

// Rows returns a copy of the table as nested slices.
func (c *Coverage) Rows() [][]int {
	out := make([][]int, c.n)
	for i := range out {
		out[i] = append([]int(nil), c.counts[i*c.n:(i+1)*c.n]...)
	}

	return out
}

// Total returns the number of observations across all cells.
func (c *Coverage) Total() int {
	total := 0
	for _, v := range c.counts {
		total += v
	}

	return total
}

// Missing returns the 0-based (i, j) cells with a zero count, row by row.
func (c *Coverage) Missing() [][2]int {
	var out [][2]int
	for idx, v := range c.counts {
		if v == 0 {
			out = append(out, [2]int{idx / c.n, idx % c.n})
		}
	}

	return out
}

// Complete reports whether every cell has at least one observation.
func (c *Coverage) Complete() bool {
	for _, v := range c.counts {
		if v == 0 {
			return false
		}
	}

	return true
}

// Equal reports whether two tables have the same size and counts.
func (c *Coverage) Equal(o *Coverage) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.n != o.n {
		return false
	}
	for idx := range c.counts {
		if c.counts[idx] != o.counts[idx] {
			return false
		}
	}

	return true
}

// String renders the table as bracketed rows with right-aligned columns:
//
//	[[4 3 3]
//	 [3 4 3]
//	 [3 3 4]]
func (c *Coverage) String() string {
	width := 1
	for _, v := range c.counts {
		if w := len(strconv.Itoa(v)); w > width {
			width = w
		}
	}

	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < c.n; i++ {
		if i > 0 {
			b.WriteString("\n ")
		}
		b.WriteString("[")
		for j := 0; j < c.n; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%*d", width, c.counts[i*c.n+j])
		}
		b.WriteString("]")
	}
	b.WriteString("]")

	return b.String()
}

// Result bundles the fused network and its coverage table.
type Result struct {
	Network  *network.Network // F×N×N averaged S, common grid, uniform nominal z0
	Coverage *Coverage        // N×N observation counts
}
