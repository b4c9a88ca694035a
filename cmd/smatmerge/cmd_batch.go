package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/smatmerge/internal/batch"
	"github.com/katalvlaran/smatmerge/internal/config"
)

func newBatchCmd() *cobra.Command {
	var (
		workers int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "batch <config.yaml>",
		Short: "Run every reconstruction job of a YAML config",
		Long: `Runs the jobs listed in a YAML config concurrently. Relative paths in the
config are resolved against the config file's directory.

Example config:

  workers: 4
  output:
    format: ri
  jobs:
    - name: dut5
      n_ports: 5
      inputs:
        - {path: meas_1234.s4p, ports: [1, 2, 3, 4]}
        - {path: meas_1235.s4p, ports: [1, 2, 3, 5]}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
				if err = cfg.Validate(); err != nil {
					return err
				}
			}
			if logFormat == "" {
				// The file's logging section wins over the environment.
				if logger, err = newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
					return err
				}
			}
			return runBatch(cmd, cfg, jsonOut)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Jobs to run concurrently (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the reports as JSON")

	return cmd
}

func runBatch(cmd *cobra.Command, cfg *config.Config, jsonOut bool) error {
	jobs := batch.JobsFromConfig(cfg)
	if len(jobs) == 0 {
		return errors.New("config defines no jobs")
	}

	reports, runErr := batch.NewRunner(logger, cfg).Run(commandContext(cmd), jobs)

	done := make([]*batch.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			done = append(done, r)
		}
	}
	if jsonOut {
		if err := writeJSON(cmd.OutOrStdout(), done); err != nil {
			return err
		}
		return runErr
	}
	for _, r := range done {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d-port network written as '%s' (%d inputs, %d points)\n",
			r.Job, r.NPorts, r.Output, r.Inputs, r.Points)
	}

	return runErr
}
