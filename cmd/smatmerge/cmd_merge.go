package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/smatmerge/internal/batch"
	"github.com/katalvlaran/smatmerge/internal/config"
	"github.com/katalvlaran/smatmerge/internal/portspec"
)

// mergeOptions are the root command's flags.
type mergeOptions struct {
	nPorts         int
	output         string
	format         string
	freqUnit       string
	strict         bool
	allowDuplicate bool
	jsonOut        bool
}

func addMergeFlags(cmd *cobra.Command, o *mergeOptions) {
	f := cmd.Flags()
	f.IntVarP(&o.nPorts, "n-ports", "n", 5, "Total number of DUT ports")
	f.StringVarP(&o.output, "output", "o", "", "Output file (default reconstructed_<N>port.s<N>p in the current directory)")
	f.StringVar(&o.format, "format", "ri", "Output number format: ri, ma or db (db writes exact zeros as -400 dB, read back as 0)")
	f.StringVar(&o.freqUnit, "freq-unit", "hz", "Output frequency unit: hz, khz, mhz or ghz")
	f.BoolVar(&o.strict, "strict", false, "Fail when an input selects every port or a DUT port is not covered")
	f.BoolVar(&o.allowDuplicate, "allow-duplicate-ports", false, "Accept a DUT port listed twice in one mapping")
	f.BoolVar(&o.jsonOut, "json", false, "Print the report as JSON")
}

// applyMergeFlags lays explicitly set flags over the environment config.
func applyMergeFlags(cmd *cobra.Command, cfg *config.Config, o *mergeOptions) error {
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Output.Format = o.format
	}
	if f.Changed("freq-unit") {
		cfg.Output.FrequencyUnit = o.freqUnit
	}
	if f.Changed("strict") {
		cfg.Reconstruct.Strict = o.strict
	}
	if f.Changed("allow-duplicate-ports") {
		cfg.Reconstruct.AllowDuplicatePorts = o.allowDuplicate
	}

	return cfg.Validate()
}

func runMerge(cmd *cobra.Command, args []string, o *mergeOptions) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err = applyMergeFlags(cmd, cfg, o); err != nil {
		return err
	}

	specs, err := portspec.ParseAll(args)
	if err != nil {
		return err
	}
	output := o.output
	if output == "" {
		output = portspec.DefaultOutputPath(".", o.nPorts, portspec.Paths(specs))
	}

	job := batch.JobFromSpecs("cli", o.nPorts, output, specs)
	report, err := batch.NewRunner(logger, cfg).Merge(commandContext(cmd), job)
	if err != nil {
		return err
	}

	if o.jsonOut {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reconstructed %d-port network written as '%s'\n", report.NPorts, report.Output)
	fmt.Fprintln(out, "Counts (number of measurements contributing to each S_ij):")
	fmt.Fprintln(out, report.CoverageTable())

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
