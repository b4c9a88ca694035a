// Package config holds the batch-job configuration of smatmerge.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/smatmerge/reconstruct"
	"github.com/katalvlaran/smatmerge/touchstone"
)

// Config is the top-level configuration.
type Config struct {
	// Workers bounds how many jobs run at once.
	Workers int `yaml:"workers"`

	Output      OutputConfig      `yaml:"output"`
	Reconstruct ReconstructConfig `yaml:"reconstruct"`
	Logging     LoggingConfig     `yaml:"logging"`

	Jobs []JobConfig `yaml:"jobs"`
}

// OutputConfig controls how result files are written.
type OutputConfig struct {
	Format        string `yaml:"format"`    // ri, ma, db
	FrequencyUnit string `yaml:"freq_unit"` // hz, khz, mhz, ghz
}

// ReconstructConfig mirrors the reconstruct options.
type ReconstructConfig struct {
	RTol                float64 `yaml:"rtol"`
	ATol                float64 `yaml:"atol"`
	ReferenceImpedance  float64 `yaml:"reference_impedance"`
	AllowDuplicatePorts bool    `yaml:"allow_duplicate_ports"`
	// Strict turns full-port-set inputs and uncovered ports into errors.
	Strict bool `yaml:"strict"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// JobConfig is one reconstruction: inputs merged into one N-port output.
type JobConfig struct {
	Name   string        `yaml:"name"`
	NPorts int           `yaml:"n_ports"`
	Output string        `yaml:"output"` // empty ⇒ default name next to the first input
	Inputs []InputConfig `yaml:"inputs"`
}

// InputConfig is one measurement file and its 1-based DUT ports.
type InputConfig struct {
	Path  string `yaml:"path"`
	Ports []int  `yaml:"ports"`
}

// Environment variables read by applyEnvOverrides.
const (
	EnvWorkers  = "SMATMERGE_WORKERS"
	EnvLogLevel = "SMATMERGE_LOG_LEVEL"
	EnvFormat   = "SMATMERGE_FORMAT"
	EnvFreqUnit = "SMATMERGE_FREQ_UNIT"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Output: OutputConfig{
			Format:        "ri",
			FrequencyUnit: "hz",
		},
		Reconstruct: ReconstructConfig{
			RTol:               reconstruct.DefaultFrequencyRTol,
			ATol:               reconstruct.DefaultFrequencyATol,
			ReferenceImpedance: reconstruct.DefaultReferenceImpedance,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// FromEnv returns the defaults with .env and environment overrides applied.
// Used when no config file is given.
func FromEnv() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := DefaultConfig()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Load reads a YAML config file. Relative job paths are resolved against the
// file's directory; .env and environment variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// resolvePaths makes relative input and output paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Jobs {
		c.Jobs[i].Output = join(c.Jobs[i].Output)
		for k := range c.Jobs[i].Inputs {
			c.Jobs[i].Inputs[k].Path = join(c.Jobs[i].Inputs[k].Path)
		}
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid %s: %s", EnvWorkers, v)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvFreqUnit); v != "" {
		c.Output.FrequencyUnit = strings.ToLower(v)
	}

	return nil
}

// Validate checks the configuration for values the tool cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if _, err := touchstone.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := touchstone.ParseUnit(c.Output.FrequencyUnit); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	r := c.Reconstruct
	if !finiteNonNegative(r.RTol) || !finiteNonNegative(r.ATol) {
		errs = append(errs, errors.New("rtol and atol must be finite and non-negative"))
	}
	if !finiteNonNegative(r.ReferenceImpedance) || r.ReferenceImpedance == 0 {
		errs = append(errs, fmt.Errorf("reference_impedance must be positive, got %g", r.ReferenceImpedance))
	}

	names := make(map[string]struct{}, len(c.Jobs))
	for i, job := range c.Jobs {
		if err := job.validate(); err != nil {
			errs = append(errs, fmt.Errorf("job %d: %w", i+1, err))
		}
		if job.Name == "" {
			continue
		}
		if _, dup := names[job.Name]; dup {
			errs = append(errs, fmt.Errorf("job %d: duplicate name %q", i+1, job.Name))
		}
		names[job.Name] = struct{}{}
	}

	return errors.Join(errs...)
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func (j JobConfig) validate() error {
	if j.NPorts < 1 {
		return fmt.Errorf("n_ports must be positive, got %d", j.NPorts)
	}
	if len(j.Inputs) == 0 {
		return errors.New("no inputs")
	}
	for k, in := range j.Inputs {
		if in.Path == "" {
			return fmt.Errorf("input %d: empty path", k+1)
		}
		if len(in.Ports) == 0 {
			return fmt.Errorf("input %d (%s): no ports", k+1, filepath.Base(in.Path))
		}
	}

	return nil
}

// ReconstructOptions translates the section into reconstruct options.
func (c *Config) ReconstructOptions() []reconstruct.Option {
	opts := []reconstruct.Option{
		reconstruct.WithFrequencyTolerance(c.Reconstruct.RTol, c.Reconstruct.ATol),
		reconstruct.WithReferenceImpedance(c.Reconstruct.ReferenceImpedance),
	}
	if c.Reconstruct.AllowDuplicatePorts {
		opts = append(opts, reconstruct.WithAllowDuplicatePorts())
	}

	return opts
}

// WriteOptions translates the output section into touchstone options.
// The section must have passed Validate.
func (c *Config) WriteOptions() []touchstone.Option {
	format, _ := touchstone.ParseFormat(c.Output.Format)
	unit, _ := touchstone.ParseUnit(c.Output.FrequencyUnit)

	return []touchstone.Option{
		touchstone.WithFormat(format),
		touchstone.WithFrequencyUnit(unit),
	}
}
