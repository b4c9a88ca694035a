// Package smatmerge reconstructs full N-port S-parameter networks from
// measurements that each saw only a subset of the device's ports.
//
// 🚀 What is smatmerge?
//
//	A small toolkit for the "more DUT ports than VNA ports" problem:
//		• network/     : complex F×k×k S-parameter container with per-port z0
//		• reconstruct/ : fuse port-subset measurements by averaging, with a
//		                 coverage table counting the contributions per S_ij
//		• touchstone/  : Touchstone v1 (.sNp) reader and writer
//		• cmd/smatmerge : CLI: merge, batch jobs from YAML, coverage planning
//
// ✨ Why choose smatmerge?
//
//   - Deterministic - the same inputs in any order give the same result
//   - Honest - unmeasured cells are exactly zero and reported as such
//   - Strict inputs - port counts, mappings and frequency grids are checked
//     before any arithmetic
//   - Pure Go numerics - no cgo
//
// Quick example (5-port DUT, 4-port VNA):
//
//	smatmerge --n-ports 5 \
//	    meas_1234.s4p:1,2,3,4 meas_1235.s4p:1,2,3,5 \
//	    meas_1245.s4p:1,2,4,5 meas_1345.s4p:1,3,4,5 meas_2345.s4p:2,3,4,5
//
// writes reconstructed_5port.s5p and prints how many measurements
// contributed to each S_ij.
//
//	go install github.com/katalvlaran/smatmerge/cmd/smatmerge@latest
package smatmerge
