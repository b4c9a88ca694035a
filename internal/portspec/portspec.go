// SPDX-License-Identifier: MIT

// Package portspec parses "file.s4p:1,2,3,4" measurement tokens and picks
// output file names that never clobber an input.
package portspec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/katalvlaran/smatmerge/reconstruct"
)

var (
	// ErrInvalidSpec indicates a token that is not "path:p1,p2,...".
	ErrInvalidSpec = errors.New("portspec: invalid measurement spec, use 'file.s4p:1,2,3,4'")

	// ErrOutputIsInput indicates an output path that resolves to an input file.
	ErrOutputIsInput = errors.New("portspec: output file cannot be one of the input files")
)

// Spec is one measurement file and the DUT ports its local ports map to.
type Spec struct {
	Path  string
	Ports reconstruct.PortMapping
}

// String renders the spec back in command-line form.
func (s Spec) String() string {
	return s.Path + ":" + s.Ports.String()
}

// Parse splits tok at its last colon, so Windows drive letters survive.
// Blank port entries are skipped; at least one port is required.
func Parse(tok string) (Spec, error) {
	i := strings.LastIndexByte(tok, ':')
	if i <= 0 {
		return Spec{}, fmt.Errorf("%q: %w", tok, ErrInvalidSpec)
	}
	path, list := strings.TrimSpace(tok[:i]), tok[i+1:]
	if path == "" {
		return Spec{}, fmt.Errorf("%q: %w", tok, ErrInvalidSpec)
	}

	var ports reconstruct.PortMapping
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		p, err := strconv.Atoi(field)
		if err != nil {
			return Spec{}, fmt.Errorf("%q: port %q: %w", tok, field, ErrInvalidSpec)
		}
		ports = append(ports, p)
	}
	if len(ports) == 0 {
		return Spec{}, fmt.Errorf("%q: no ports: %w", tok, ErrInvalidSpec)
	}

	return Spec{Path: path, Ports: ports}, nil
}

// ParseAll parses every token, stopping at the first failure.
func ParseAll(toks []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(toks))
	for _, tok := range toks {
		s, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}

	return specs, nil
}

// Paths returns the file of every spec, in order.
func Paths(specs []Spec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Path
	}

	return out
}

// Mappings returns the port mapping of every spec, in order.
func Mappings(specs []Spec) []reconstruct.PortMapping {
	out := make([]reconstruct.PortMapping, len(specs))
	for i, s := range specs {
		out[i] = s.Ports
	}

	return out
}

// DefaultOutputName is "reconstructed_<n>port.s<n>p".
func DefaultOutputName(n int) string {
	return fmt.Sprintf("reconstructed_%dport.s%dp", n, n)
}

// DefaultOutputPath joins dir with DefaultOutputName(n), appending _1, _2, ...
// to the stem while the base name equals the base name of any input.
func DefaultOutputPath(dir string, n int, inputs []string) string {
	taken := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		taken[filepath.Base(in)] = struct{}{}
	}

	name := DefaultOutputName(n)
	for count := 1; ; count++ {
		if _, clash := taken[name]; !clash {
			break
		}
		name = fmt.Sprintf("reconstructed_%dport_%d.s%dp", n, count, n)
	}

	return filepath.Join(dir, name)
}

// CheckOutput returns ErrOutputIsInput when output resolves to the same
// absolute path as any input.
func CheckOutput(output string, inputs []string) error {
	out, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		if abs == out {
			return fmt.Errorf("%s: %w", output, ErrOutputIsInput)
		}
	}

	return nil
}
