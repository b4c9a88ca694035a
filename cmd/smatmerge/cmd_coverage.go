package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/smatmerge/internal/portspec"
	"github.com/katalvlaran/smatmerge/reconstruct"
)

// coveragePlan is the JSON form of the coverage command.
type coveragePlan struct {
	NPorts       int      `json:"n_ports"`
	Coverage     [][]int  `json:"coverage"`
	Uncovered    []int    `json:"uncovered_ports,omitempty"`
	FullPortSets []string `json:"full_port_sets,omitempty"`
}

func newCoverageCmd() *cobra.Command {
	var (
		nPorts         int
		allowDuplicate bool
		jsonOut        bool
	)
	cmd := &cobra.Command{
		Use:   "coverage file:ports [file:ports ...]",
		Short: "Show how many measurements will contribute to each S_ij",
		Long: `Computes the coverage matrix a merge of the given measurements would
produce, without reading any file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := portspec.ParseAll(args)
			if err != nil {
				return err
			}
			var opts []reconstruct.Option
			if allowDuplicate {
				opts = append(opts, reconstruct.WithAllowDuplicatePorts())
			}
			mappings := portspec.Mappings(specs)
			cov, err := reconstruct.PlanCoverage(nPorts, mappings, opts...)
			if err != nil {
				return err
			}

			plan := coveragePlan{
				NPorts:    nPorts,
				Coverage:  cov.Rows(),
				Uncovered: reconstruct.UncoveredPorts(nPorts, mappings),
			}
			for _, s := range specs {
				if reconstruct.IsFullPortSet(s.Ports, nPorts) {
					plan.FullPortSets = append(plan.FullPortSets, s.Path)
				}
			}
			logger.Debug("coverage planned", zap.Int("n_ports", nPorts), zap.Int("observations", cov.Total()))

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Counts (number of measurements contributing to each S_ij):")
			fmt.Fprintln(out, cov)
			if len(plan.Uncovered) > 0 {
				fmt.Fprintf(out, "Uncovered ports: %v\n", plan.Uncovered)
			}
			for _, p := range plan.FullPortSets {
				fmt.Fprintf(out, "%s selects all %d ports and may already be a full network\n", p, nPorts)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&nPorts, "n-ports", "n", 5, "Total number of DUT ports")
	cmd.Flags().BoolVar(&allowDuplicate, "allow-duplicate-ports", false, "Accept a DUT port listed twice in one mapping")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the plan as JSON")

	return cmd
}
