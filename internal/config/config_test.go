package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvWorkers, EnvLogLevel, EnvFormat, EnvFreqUnit} {
		t.Setenv(k, "")
	}
}

const sampleYAML = `
workers: 2
output:
  format: db
  freq_unit: ghz
reconstruct:
  strict: true
jobs:
  - name: dut5
    n_ports: 5
    output: out/dut5.s5p
    inputs:
      - path: meas_1234.s4p
        ports: [1, 2, 3, 4]
      - path: /abs/meas_1235.s4p
        ports: [1, 2, 3, 5]
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ri", cfg.Output.Format)
	assert.Equal(t, "hz", cfg.Output.FrequencyUnit)
	assert.Equal(t, 50.0, cfg.Reconstruct.ReferenceImpedance)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "db", cfg.Output.Format)
	assert.True(t, cfg.Reconstruct.Strict)
	assert.Equal(t, 1e-5, cfg.Reconstruct.RTol, "unset keys keep defaults")

	want := []JobConfig{{
		Name:   "dut5",
		NPorts: 5,
		Output: filepath.Join(dir, "out", "dut5.s5p"),
		Inputs: []InputConfig{
			{Path: filepath.Join(dir, "meas_1234.s4p"), Ports: []int{1, 2, 3, 4}},
			{Path: "/abs/meas_1235.s4p", Ports: []int{1, 2, 3, 5}},
		},
	}}
	if diff := cmp.Diff(want, cfg.Jobs); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: [1\n"), 0644))
	_, err = Load(bad)
	require.ErrorContains(t, err, "failed to parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("jobs:\n  - name: x\n    n_ports: 0\n"), 0644))
	_, err = Load(invalid)
	require.ErrorContains(t, err, "n_ports must be positive")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("values override file", func(t *testing.T) {
		t.Setenv(EnvWorkers, "7")
		t.Setenv(EnvLogLevel, "DEBUG")
		t.Setenv(EnvFormat, "MA")
		t.Setenv(EnvFreqUnit, "MHz")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, 7, cfg.Workers)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "ma", cfg.Output.Format)
		assert.Equal(t, "mhz", cfg.Output.FrequencyUnit)
	})

	t.Run("invalid workers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvWorkers, "zero")

		_, err := FromEnv()
		require.ErrorContains(t, err, EnvWorkers)
	})

	t.Run("invalid format fails validation", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvFormat, "xml")

		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"workers", func(c *Config) { c.Workers = 0 }, "workers must be positive"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "unknown log level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "unknown log format"},
		{"tolerance", func(c *Config) { c.Reconstruct.ATol = -1 }, "rtol and atol"},
		{"impedance", func(c *Config) { c.Reconstruct.ReferenceImpedance = 0 }, "reference_impedance"},
		{"no inputs", func(c *Config) {
			c.Jobs = []JobConfig{{Name: "a", NPorts: 3}}
		}, "no inputs"},
		{"no ports", func(c *Config) {
			c.Jobs = []JobConfig{{Name: "a", NPorts: 3, Inputs: []InputConfig{{Path: "x.s2p"}}}}
		}, "no ports"},
		{"duplicate name", func(c *Config) {
			in := []InputConfig{{Path: "x.s2p", Ports: []int{1, 2}}}
			c.Jobs = []JobConfig{{Name: "a", NPorts: 3, Inputs: in}, {Name: "a", NPorts: 3, Inputs: in}}
		}, "duplicate name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.Jobs = []JobConfig{{
		Name:   "abs",
		NPorts: 3,
		Output: filepath.Join(dir, "out.s3p"),
		Inputs: []InputConfig{{Path: filepath.Join(dir, "a.s2p"), Ports: []int{1, 3}}},
	}}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionTranslation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reconstruct.AllowDuplicatePorts = true
	assert.Len(t, cfg.ReconstructOptions(), 3)

	cfg.Reconstruct.AllowDuplicatePorts = false
	assert.Len(t, cfg.ReconstructOptions(), 2)
	assert.Len(t, cfg.WriteOptions(), 2)
}
