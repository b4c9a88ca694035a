// SPDX-License-Identifier: MIT

package touchstone

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/katalvlaran/smatmerge/network"
)

// Write serializes n as Touchstone v1.
//
// Layout: optional "!" comments, "# <unit> S <format> R <z0>", then one block
// per frequency. Two-port rows are written column-major on a single line;
// larger networks put each matrix row on its own line(s), at most four
// pairs per line.
//
// Errors: ErrNilNetwork, ErrNonUniformImpedance, or the writer's error.
func Write(w io.Writer, n *network.Network, opts ...Option) error {
	if n == nil {
		return ErrNilNetwork
	}
	z0, ok := n.UniformZ0()
	if !ok || imag(z0) != 0 {
		return ErrNonUniformImpedance
	}
	o := gatherOptions(opts...)

	bw := bufio.NewWriter(w)
	for _, c := range o.comments {
		fmt.Fprintf(bw, "! %s\n", c)
	}
	fmt.Fprintf(bw, "# %s S %s R %s\n", o.unit, o.format, formatFloat(real(z0)))

	ports := n.Ports()
	freq := n.Frequencies()
	mult := o.unit.Multiplier()
	var v complex128
	for f := range freq {
		bw.WriteString(formatFloat(freq[f] / mult))
		if ports <= 2 {
			for p := 0; p < ports*ports; p++ {
				i, j := dataIndex(p, ports)
				v, _ = n.At(f, i, j)
				writePair(bw, v, o.format)
			}
			bw.WriteByte('\n')
			continue
		}
		for i := 0; i < ports; i++ {
			for j := 0; j < ports; j++ {
				if j > 0 && j%pairsPerLine == 0 {
					bw.WriteString("\n ")
				}
				v, _ = n.At(f, i, j)
				writePair(bw, v, o.format)
			}
			bw.WriteByte('\n')
			if i < ports-1 {
				bw.WriteByte(' ')
			}
		}
	}

	return bw.Flush()
}

// writePair appends one value as two space-prefixed numbers.
func writePair(bw *bufio.Writer, v complex128, f Format) {
	a, b := encode(v, f)
	bw.WriteByte(' ')
	bw.WriteString(formatFloat(a))
	bw.WriteByte(' ')
	bw.WriteString(formatFloat(b))
}

// encode is the inverse of decode.
func encode(v complex128, f Format) (float64, float64) {
	switch f {
	case MA:
		return cmplx.Abs(v), cmplx.Phase(v) * 180 / math.Pi
	case DB:
		mag := cmplx.Abs(v)
		if mag == 0 {
			return dbFloor, 0
		}
		return 20 * math.Log10(mag), cmplx.Phase(v) * 180 / math.Pi
	default:
		return real(v), imag(v)
	}
}

// dbFloor stands in for -Inf dB (an unmeasured, exactly zero cell).
// The reader maps magnitudes at or below it back to exactly zero.
const dbFloor = -400.0

// formatFloat prints the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFile writes n to path atomically: the data goes to a temporary file in
// the same directory, is synced, then renamed over path.
func WriteFile(path string, n *network.Network, opts ...Option) error {
	var buf bytes.Buffer
	if err := Write(&buf, n, opts...); err != nil {
		return touchstoneErrorf(filepath.Base(path), err)
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // no-op after a successful rename
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil && runtime.GOOS != "windows" {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
