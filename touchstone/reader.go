// SPDX-License-Identifier: MIT

package touchstone

import (
	"bufio"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/katalvlaran/smatmerge/network"
)

// extPattern matches ".s4p", ".S12P", ...
var extPattern = regexp.MustCompile(`(?i)^\.s(\d+)p$`)

// PortsFromPath returns n for a "*.sNp" file name.
func PortsFromPath(path string) (int, error) {
	m := extPattern.FindStringSubmatch(filepath.Ext(path))
	if m == nil {
		return 0, touchstoneErrorf(filepath.Base(path), ErrUnknownExtension)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, touchstoneErrorf(filepath.Base(path), ErrBadPortCount)
	}

	return n, nil
}

// ReadFile parses a Touchstone file. The port count comes from the extension
// unless WithPorts is given; the network is named after the file's base name.
func ReadFile(path string, opts ...Option) (*network.Network, error) {
	o := gatherOptions(opts...)
	ports := o.ports
	if ports == 0 {
		var err error
		if ports, err = PortsFromPath(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := Read(f, ports)
	if err != nil {
		return nil, touchstoneErrorf(filepath.Base(path), err)
	}
	n.SetName(filepath.Base(path))

	return n, nil
}

// optionLine is the parsed "#" line.
type optionLine struct {
	unit   Unit
	format Format
	z0     float64
}

// Read parses Touchstone v1 data for a ports-port network.
//
// Implementation:
//   - Stage 1: strip "!" comments, parse the first "#" line (later ones are ignored).
//   - Stage 2: stream numeric tokens into records of 1 + 2·ports² values,
//     regardless of line breaks.
//   - Stage 3: convert units and formats, build the network.
//
// Errors: *ParseError wrapping ErrBadOptionLine, ErrUnsupportedParameter,
// ErrUnsupportedVersion, ErrBadNumber or ErrIncompleteRecord; ErrNoData.
func Read(r io.Reader, ports int) (*network.Network, error) {
	if ports <= 0 {
		return nil, ErrBadPortCount
	}

	opt := optionLine{unit: DefaultReadUnit, format: DefaultReadFormat, z0: DefaultZ0}
	seenOption := false
	width := 1 + 2*ports*ports

	var (
		records   [][]float64
		cur       []float64
		curLine   int
		lineNo    int
		noiseData bool
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() && !noiseData {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '!'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if seenOption {
				continue
			}
			seenOption = true
			if err := parseOptionLine(line[1:], &opt); err != nil {
				return nil, &ParseError{Line: lineNo, Err: err}
			}
			continue
		case strings.HasPrefix(line, "["):
			return nil, &ParseError{Line: lineNo, Err: ErrUnsupportedVersion}
		}

		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ParseError{Line: lineNo, Err: ErrBadNumber}
			}
			if len(cur) == 0 {
				// A two-port frequency that does not increase opens the noise block.
				if ports == 2 && len(records) > 0 && v <= records[len(records)-1][0] {
					noiseData = true
					break
				}
				curLine = lineNo
			}
			cur = append(cur, v)
			if len(cur) == width {
				records = append(records, cur)
				cur = nil
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(cur) > 0 {
		return nil, &ParseError{Line: curLine, Err: ErrIncompleteRecord}
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	return buildNetwork(records, ports, opt)
}

// parseOptionLine reads "<unit> <param> <format> R <z0>" tokens in any order.
func parseOptionLine(body string, opt *optionLine) error {
	toks := strings.Fields(strings.ToUpper(body))
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if u, err := ParseUnit(tok); err == nil {
			opt.unit = u
			continue
		}
		if f, err := ParseFormat(tok); err == nil {
			opt.format = f
			continue
		}
		switch tok {
		case "S":
		case "Y", "Z", "H", "G":
			return ErrUnsupportedParameter
		case "R":
			if i+1 >= len(toks) {
				return ErrBadOptionLine
			}
			z, err := strconv.ParseFloat(toks[i+1], 64)
			if err != nil || z <= 0 || math.IsInf(z, 0) {
				return ErrBadOptionLine
			}
			opt.z0 = z
			i++
		default:
			return ErrBadOptionLine
		}
	}

	return nil
}

// buildNetwork converts raw records into a Network.
func buildNetwork(records [][]float64, ports int, opt optionLine) (*network.Network, error) {
	freq := make([]float64, len(records))
	mult := opt.unit.Multiplier()
	for f, rec := range records {
		freq[f] = rec[0] * mult
	}

	n, err := network.New("", freq, ports)
	if err != nil {
		return nil, err
	}
	if err = n.SetUniformZ0(complex(opt.z0, 0)); err != nil {
		return nil, err
	}

	var i, j int
	for f, rec := range records {
		for p := 0; p < ports*ports; p++ {
			i, j = dataIndex(p, ports)
			if err = n.Set(f, i, j, decode(rec[1+2*p], rec[2+2*p], opt.format)); err != nil {
				return nil, err
			}
		}
	}

	return n, nil
}

// dataIndex maps the p-th pair of a record to (row, col).
func dataIndex(p, ports int) (int, int) {
	if ports == 2 {
		return p % 2, p / 2 // S11 S21 S12 S22
	}

	return p / ports, p % ports
}

// decode converts a number pair in the given format to a complex value.
func decode(a, b float64, f Format) complex128 {
	switch f {
	case MA:
		return cmplx.Rect(a, b*math.Pi/180)
	case DB:
		if a <= dbFloor {
			return 0
		}
		return cmplx.Rect(math.Pow(10, a/20), b*math.Pi/180)
	default:
		return complex(a, b)
	}
}
