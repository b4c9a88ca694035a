// SPDX-License-Identifier: MIT

package touchstone

import (
	"fmt"
	"strings"
)

// Format is the number representation of data pairs.
type Format int

const (
	// RI is real, imaginary.
	RI Format = iota
	// MA is linear magnitude, angle in degrees.
	MA
	// DB is 20·log10 magnitude, angle in degrees.
	DB
)

// String returns the option-line keyword.
func (f Format) String() string {
	switch f {
	case RI:
		return "RI"
	case MA:
		return "MA"
	case DB:
		return "DB"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts "ri", "ma" or "db" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RI":
		return RI, nil
	case "MA":
		return MA, nil
	case "DB":
		return DB, nil
	}

	return 0, fmt.Errorf("format %q: %w", s, ErrBadOptionLine)
}

// Unit is a frequency unit of the option line.
type Unit int

const (
	Hz Unit = iota
	KHz
	MHz
	GHz
)

// Multiplier returns the factor converting the unit to Hz.
func (u Unit) Multiplier() float64 {
	switch u {
	case KHz:
		return 1e3
	case MHz:
		return 1e6
	case GHz:
		return 1e9
	default:
		return 1
	}
}

// String returns the option-line keyword.
func (u Unit) String() string {
	switch u {
	case KHz:
		return "KHZ"
	case MHz:
		return "MHZ"
	case GHz:
		return "GHZ"
	default:
		return "HZ"
	}
}

// ParseUnit accepts "hz", "khz", "mhz" or "ghz" in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HZ":
		return Hz, nil
	case "KHZ":
		return KHz, nil
	case "MHZ":
		return MHz, nil
	case "GHZ":
		return GHz, nil
	}

	return 0, fmt.Errorf("unit %q: %w", s, ErrBadOptionLine)
}

// Defaults of the option line when a token is absent, and of the writer.
const (
	DefaultReadUnit    = GHz
	DefaultReadFormat  = MA
	DefaultZ0          = 50.0
	DefaultWriteUnit   = Hz
	DefaultWriteFormat = RI
	pairsPerLine       = 4
)

// Option configures Read and Write.
type Option func(*Options)

// Options holds the effective reader/writer configuration.
type Options struct {
	ports    int // 0 ⇒ from extension
	format   Format
	unit     Unit
	comments []string
}

// WithPorts forces the port count instead of reading it from the extension.
func WithPorts(n int) Option {
	if n <= 0 {
		panic("touchstone: WithPorts: n must be positive")
	}

	return func(o *Options) { o.ports = n }
}

// WithFormat selects the writer's number format.
func WithFormat(f Format) Option {
	return func(o *Options) { o.format = f }
}

// WithFrequencyUnit selects the writer's frequency unit.
func WithFrequencyUnit(u Unit) Option {
	return func(o *Options) { o.unit = u }
}

// WithComments adds "!" header lines to written files.
func WithComments(lines ...string) Option {
	return func(o *Options) { o.comments = append(o.comments, lines...) }
}

func gatherOptions(user ...Option) Options {
	o := Options{format: DefaultWriteFormat, unit: DefaultWriteUnit}
	for _, set := range user {
		set(&o)
	}

	return o
}
