// Package touchstone reads and writes Touchstone v1 (.sNp) S-parameter files.
//
// A file is a sequence of comment lines ("! ..."), one option line
//
//	# <unit> <parameter> <format> R <z0>      defaults: GHz S MA R 50
//
// and data records of one frequency followed by n² complex values. Record
// layout ignores line breaks. Two-port files list S11 S21 S12 S22
// (column-major); every other size is row-major.
//
// Supported: Hz/kHz/MHz/GHz, RI/MA/DB formats, S parameters only, a single
// real reference impedance. Two-port noise blocks are skipped. Version 2
// keyword sections ("[Version] 2.0") are rejected with ErrUnsupportedVersion.
//
// WriteFile writes atomically (temporary file in the target directory, then
// rename), so a failed merge never leaves a truncated output behind.
package touchstone
