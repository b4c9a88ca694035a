// Package reconstruct fuses partial S-parameter measurements, each taken on a
// subset of a device's ports, into one full N-port network.
//
// 🚀 What does it solve?
//
//	A 4-port VNA cannot measure a 5-port DUT in one shot. Measure it several
//	times on different port subsets, tell Reconstruct which DUT port each
//	local port was connected to, and it returns the full N×N matrix:
//	  • every measured (i,j) cell is the arithmetic mean of its observations
//	  • every unmeasured cell is exactly 0 with coverage count 0
//	  • S_ij and S_ji are accumulated independently (no symmetry assumed)
//
// ✨ Key features:
//   - strict input validation: grid agreement, port counts, mapping range
//     and duplicates, reported as *MeasurementError wrapping a sentinel
//   - Coverage table with the number of observations per cell
//   - pure queries for front ends: CoveredPorts, UncoveredPorts,
//     IsFullPortSet, PlanCoverage
//   - no logging, no I/O, no shared state; safe to call concurrently
//
// ⚙️ Usage:
//
//	res, err := reconstruct.Reconstruct(
//	    []*network.Network{m1234, m1235, m1245, m1345, m2345},
//	    []reconstruct.PortMapping{{1, 2, 3, 4}, {1, 2, 3, 5}, {1, 2, 4, 5}, {1, 3, 4, 5}, {2, 3, 4, 5}},
//	    5,
//	)
//	fmt.Println(res.Coverage)
//
// Performance:
//
//   - Time:   O(Σ F·k²) accumulation + O(F·N²) averaging
//   - Memory: O(F·N²)
package reconstruct
