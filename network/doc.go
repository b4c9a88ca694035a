// Package network holds multi-port scattering-parameter data sampled on a
// frequency grid.
//
// 🚀 What is a Network?
//
//	A Network is an F×k×k block of complex S-parameters (F frequency points,
//	k ports) plus the reference impedance of every port at every point.
//	It is the in-memory form of a Touchstone .sNp file and of the
//	reconstructed result.
//
// ✨ Key features:
//   - flat row-major storage with explicit strides (f*k*k + i*k + j)
//   - bounds-checked At/Set returning sentinel errors, never panicking
//   - Param(i, j) extracts one S_ij trace across the grid
//   - Subnetwork keeps a subset of ports (0-based), the way a VNA with
//     fewer ports sees the device
//   - AllClose and SameGrid with numpy-style |a-b| ≤ atol + rtol·|b|
//
// Ports are 0-based inside this package. 1-based DUT port numbers belong to
// the reconstruct package.
package network
