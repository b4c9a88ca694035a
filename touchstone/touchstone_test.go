package touchstone_test

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/smatmerge/network"
	"github.com/katalvlaran/smatmerge/touchstone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomNetwork returns a seeded random n-port on a 1–10 GHz grid.
func randomNetwork(t *testing.T, seed int64, n, points int) *network.Network {
	t.Helper()
	freq := make([]float64, points)
	for i := range freq {
		freq[i] = 1e9 + float64(i)*9e9/float64(points-1)
	}
	net, err := network.New("rand", freq, n)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for f := 0; f < points; f++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				require.NoError(t, net.Set(f, i, j, complex(rng.Float64()-0.5, rng.Float64()-0.5)))
			}
		}
	}

	return net
}

func at(t *testing.T, n *network.Network, f, i, j int) complex128 {
	t.Helper()
	v, err := n.At(f, i, j)
	require.NoError(t, err)

	return v
}

// TestPortsFromPath reads N from *.sNp names.
func TestPortsFromPath(t *testing.T) {
	n, err := touchstone.PortsFromPath("dir/meas_1234.s4p")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = touchstone.PortsFromPath("BIG.S12P")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = touchstone.PortsFromPath("data.csv")
	require.ErrorIs(t, err, touchstone.ErrUnknownExtension)
	_, err = touchstone.PortsFromPath("zero.s0p")
	require.ErrorIs(t, err, touchstone.ErrBadPortCount)
}

// TestRead_TwoPortColumnMajor checks the S11 S21 S12 S22 ordering.
func TestRead_TwoPortColumnMajor(t *testing.T) {
	src := "! two port\n# GHz S RI R 50\n1 0.1 0 0.2 0 0.3 0 0.4 0\n2 1 1 2 2 3 3 4 4\n"
	n, err := touchstone.Read(strings.NewReader(src), 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{1e9, 2e9}, n.Frequencies())
	assert.Equal(t, complex128(0.1), at(t, n, 0, 0, 0))
	assert.Equal(t, complex128(0.2), at(t, n, 0, 1, 0))
	assert.Equal(t, complex128(0.3), at(t, n, 0, 0, 1))
	assert.Equal(t, complex(4, 4), at(t, n, 1, 1, 1))
}

// TestRead_Defaults applies GHz S MA R 50 when the option line is absent.
func TestRead_Defaults(t *testing.T) {
	n, err := touchstone.Read(strings.NewReader("1.5 2 90\n"), 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5e9}, n.Frequencies())
	v := at(t, n, 0, 0, 0)
	assert.InDelta(t, 0, real(v), 1e-12)
	assert.InDelta(t, 2, imag(v), 1e-12)
	z, ok := n.UniformZ0()
	require.True(t, ok)
	assert.Equal(t, complex128(50), z)
}

// TestRead_DBAndUnits parses dB/angle, MHz and a custom z0 in any token order.
func TestRead_DBAndUnits(t *testing.T) {
	n, err := touchstone.Read(strings.NewReader("# db r 75 mhz s\n100 -20 180\n"), 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{1e8}, n.Frequencies())
	v := at(t, n, 0, 0, 0)
	assert.InDelta(t, -0.1, real(v), 1e-12)
	assert.InDelta(t, 0, imag(v), 1e-12)
	z, _ := n.UniformZ0()
	assert.Equal(t, complex128(75), z)
}

// TestRead_RowMajorWrapped parses a 3-port record spread over lines with
// trailing comments; only the first option line counts.
func TestRead_RowMajorWrapped(t *testing.T) {
	src := `! 3-port
# Hz S RI R 50
# GHz S MA R 10
1e9  11 0  12 0   ! row 1
     13 0
     21 0  22 0  23 0
     31 0  32 0  33 0
`
	n, err := touchstone.Read(strings.NewReader(src), 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{1e9}, n.Frequencies())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, complex(float64(10*(i+1)+j+1), 0), at(t, n, 0, i, j))
		}
	}
}

// TestRead_NoiseBlockSkipped stops at the two-port noise section.
func TestRead_NoiseBlockSkipped(t *testing.T) {
	src := `# GHz S RI R 50
1 0 0 0 0 0 0 0 0
2 0 0 0 0 0 0 0 0
! noise parameters
1 0.5 0.3 45 0.2
2 0.6 0.3 50 0.2
`
	n, err := touchstone.Read(strings.NewReader(src), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n.Len())
}

// TestRead_Errors walks the parse sentinels and line numbers.
func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		ports int
		want  error
		line  int
	}{
		{"Y data", "# GHz Y RI R 50\n1 0 0\n", 1, touchstone.ErrUnsupportedParameter, 1},
		{"unknown token", "# GHz S RI Q 50\n", 1, touchstone.ErrBadOptionLine, 1},
		{"R without value", "\n# GHz S RI R\n", 1, touchstone.ErrBadOptionLine, 2},
		{"version 2", "[Version] 2.0\n", 1, touchstone.ErrUnsupportedVersion, 1},
		{"bad number", "# GHz S RI R 50\n1 0 x\n", 1, touchstone.ErrBadNumber, 2},
		{"nan", "1 NaN 0\n", 1, touchstone.ErrBadNumber, 1},
		{"incomplete", "1 0 0\n2 0\n", 1, touchstone.ErrIncompleteRecord, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := touchstone.Read(strings.NewReader(tc.src), tc.ports)
			require.ErrorIs(t, err, tc.want)
			var pe *touchstone.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.line, pe.Line)
		})
	}

	_, err := touchstone.Read(strings.NewReader("! nothing\n# GHz S RI R 50\n"), 1)
	require.ErrorIs(t, err, touchstone.ErrNoData)
	_, err = touchstone.Read(strings.NewReader("1 0 0\n"), 0)
	require.ErrorIs(t, err, touchstone.ErrBadPortCount)
}

// TestWrite_TwoPortLayout pins the exact output of a small 2-port.
func TestWrite_TwoPortLayout(t *testing.T) {
	n, err := network.FromSlices("tiny", []float64{1e9}, [][][]complex128{{{1, 2}, {3, 4i}}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, touchstone.Write(&buf, n, touchstone.WithComments("tiny")))
	assert.Equal(t, "! tiny\n# HZ S RI R 50\n1e+09 1 0 3 0 2 0 0 4\n", buf.String())
}

// TestWrite_ThreePortLayout puts one matrix row per line.
func TestWrite_ThreePortLayout(t *testing.T) {
	n, err := network.New("zeros", []float64{2}, 3)
	require.NoError(t, err)
	require.NoError(t, n.Set(0, 1, 2, 7))

	var buf bytes.Buffer
	require.NoError(t, touchstone.Write(&buf, n))
	assert.Equal(t, "# HZ S RI R 50\n2 0 0 0 0 0 0\n  0 0 0 0 7 0\n  0 0 0 0 0 0\n", buf.String())
}

// TestWrite_RoundTrip writes and reads back in every format and unit.
func TestWrite_RoundTrip(t *testing.T) {
	orig := randomNetwork(t, 11, 5, 21)
	formats := []touchstone.Format{touchstone.RI, touchstone.MA, touchstone.DB}
	units := []touchstone.Unit{touchstone.Hz, touchstone.KHz, touchstone.MHz, touchstone.GHz}
	for _, f := range formats {
		for _, u := range units {
			t.Run(f.String()+"/"+u.String(), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, touchstone.Write(&buf, orig,
					touchstone.WithFormat(f), touchstone.WithFrequencyUnit(u)))

				back, err := touchstone.Read(&buf, 5)
				require.NoError(t, err)
				assert.True(t, network.SameGrid(back.Frequencies(), orig.Frequencies(), 1e-12, 0))
				ok, err := network.AllClose(back, orig, 0, 1e-9)
				require.NoError(t, err)
				assert.True(t, ok)
			})
		}
	}
}

// TestWrite_DBZero keeps exact zeros finite in dB files and exact on read.
func TestWrite_DBZero(t *testing.T) {
	n, err := network.New("zero", []float64{1e9}, 2)
	require.NoError(t, err)
	require.NoError(t, n.Set(0, 0, 0, 0.5))

	var buf bytes.Buffer
	require.NoError(t, touchstone.Write(&buf, n, touchstone.WithFormat(touchstone.DB)))
	assert.Contains(t, buf.String(), "-400")
	assert.NotContains(t, buf.String(), "Inf")

	back, err := touchstone.Read(&buf, 2)
	require.NoError(t, err)
	assert.Equal(t, complex128(0), at(t, back, 0, 0, 1))
	assert.Equal(t, complex128(0), at(t, back, 0, 1, 1))
	assert.InDelta(t, 0.5, real(at(t, back, 0, 0, 0)), 1e-12)

	// Anything at or below the floor is an exact zero.
	back, err = touchstone.Read(strings.NewReader("# GHZ S DB R 50\n1 -500 90\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, complex128(0), at(t, back, 0, 0, 0))
}

// TestWrite_Errors rejects nil and non-uniform impedances.
func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, touchstone.Write(&buf, nil), touchstone.ErrNilNetwork)

	n, err := network.New("mixed", []float64{1}, 2)
	require.NoError(t, err)
	require.NoError(t, n.SetZ0(0, 1, 75))
	require.ErrorIs(t, touchstone.Write(&buf, n), touchstone.ErrNonUniformImpedance)

	require.NoError(t, n.SetUniformZ0(complex(50, 1)))
	require.ErrorIs(t, touchstone.Write(&buf, n), touchstone.ErrNonUniformImpedance)
}

// TestWriteFileReadFile goes through the file system and leaves no temp files.
func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "meas_123.s3p")
	orig := randomNetwork(t, 12, 3, 8)

	require.NoError(t, touchstone.WriteFile(path, orig))
	require.NoError(t, touchstone.WriteFile(path, orig)) // overwrite

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	back, err := touchstone.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "meas_123.s3p", back.Name())
	ok, err := network.AllClose(back, orig, 0, 1e-12)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = touchstone.ReadFile(filepath.Join(dir, "missing.s2p"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestReadFile_WithPorts overrides the extension.
func TestReadFile_WithPorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Hz S RI R 50\n1 1 0\n"), 0o644))

	_, err := touchstone.ReadFile(path)
	require.ErrorIs(t, err, touchstone.ErrUnknownExtension)

	n, err := touchstone.ReadFile(path, touchstone.WithPorts(1))
	require.NoError(t, err)
	assert.Equal(t, 1, n.Ports())
}

// TestParseFormatUnit covers the flag parsers.
func TestParseFormatUnit(t *testing.T) {
	f, err := touchstone.ParseFormat("db")
	require.NoError(t, err)
	assert.Equal(t, touchstone.DB, f)
	_, err = touchstone.ParseFormat("xx")
	require.ErrorIs(t, err, touchstone.ErrBadOptionLine)

	u, err := touchstone.ParseUnit("MHz")
	require.NoError(t, err)
	assert.Equal(t, 1e6, u.Multiplier())
	_, err = touchstone.ParseUnit("thz")
	require.ErrorIs(t, err, touchstone.ErrBadOptionLine)
}
