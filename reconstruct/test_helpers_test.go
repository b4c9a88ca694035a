// SPDX-License-Identifier: MIT
// Package reconstruct_test contains test helpers.
//
// Purpose:
//   - Deterministic random networks (fixed seeds) and their port subsets.
//   - An independent brute-force coverage recount to check the engine against.

package reconstruct_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/smatmerge/network"
	"github.com/katalvlaran/smatmerge/reconstruct"
	"github.com/stretchr/testify/require"
)

// tol is the agreement demanded between a reconstruction and its source.
const tol = 1e-6

// fiveFromFour are the five 4-port subsets of a 5-port DUT.
var fiveFromFour = []reconstruct.PortMapping{
	{1, 2, 3, 4},
	{1, 2, 3, 5},
	{1, 2, 4, 5},
	{1, 3, 4, 5},
	{2, 3, 4, 5},
}

// linGrid returns points evenly spaced frequencies in [start, stop] Hz.
func linGrid(start, stop float64, points int) []float64 {
	out := make([]float64, points)
	if points == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(points-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	return out
}

// randomNetwork builds an n-port network on a 1–10 GHz grid with uniform
// random real and imaginary parts in [0,1), like rand(...) + 1j*rand(...).
func randomNetwork(t testing.TB, seed int64, n, points int) *network.Network {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	net, err := network.New("dut", linGrid(1e9, 10e9, points), n)
	require.NoError(t, err)
	for f := 0; f < points; f++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				require.NoError(t, net.Set(f, i, j, complex(rng.Float64(), rng.Float64())))
			}
		}
	}

	return net
}

// subsets cuts full into one measurement per mapping (1-based DUT ports).
func subsets(t testing.TB, full *network.Network, mappings []reconstruct.PortMapping) []*network.Network {
	t.Helper()
	out := make([]*network.Network, len(mappings))
	for idx, m := range mappings {
		ports := make([]int, len(m))
		for i, p := range m {
			ports[i] = p - 1
		}
		sub, err := full.Subnetwork(ports...)
		require.NoError(t, err)
		sub.SetName("meas_" + m.String())
		out[idx] = sub
	}

	return out
}

// recount counts, per 0-based cell (i, j), how many (mapping, local pair)
// occurrences land there, by scanning every mapping entry pair directly.
func recount(n int, mappings []reconstruct.PortMapping) [][]int {
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, n)
	}
	for _, m := range mappings {
		for _, a := range m {
			for _, b := range m {
				out[a-1][b-1]++
			}
		}
	}

	return out
}

// mustAt reads S_ij at f or fails the test.
func mustAt(t testing.TB, n *network.Network, f, i, j int) complex128 {
	t.Helper()
	v, err := n.At(f, i, j)
	require.NoError(t, err)

	return v
}
