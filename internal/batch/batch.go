// Package batch runs reconstruction jobs end to end: load the measurement
// files, fuse them, write the N-port result.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/smatmerge/internal/config"
	"github.com/katalvlaran/smatmerge/internal/portspec"
	"github.com/katalvlaran/smatmerge/network"
	"github.com/katalvlaran/smatmerge/reconstruct"
	"github.com/katalvlaran/smatmerge/touchstone"
)

var (
	// ErrFullPortSet is returned in strict mode when an input maps to every
	// DUT port and may already be a full N-port measurement.
	ErrFullPortSet = errors.New("batch: input selects every DUT port")

	// ErrUncoveredPorts is returned in strict mode when some DUT port is not
	// measured by any input.
	ErrUncoveredPorts = errors.New("batch: DUT ports not covered by any input")

	// ErrNoInputs indicates a job without measurement files.
	ErrNoInputs = errors.New("batch: job has no inputs")

	// ErrOutputConflict indicates two jobs writing the same file, or a job
	// writing a file another job reads.
	ErrOutputConflict = errors.New("batch: output path conflicts with another job")
)

// Input is one measurement file and the DUT ports of its local ports.
type Input struct {
	Path  string
	Ports reconstruct.PortMapping
}

// Job merges Inputs into one NPorts-port file at Output.
// An empty Output selects portspec.DefaultOutputPath next to the first input.
type Job struct {
	Name   string
	NPorts int
	Output string
	Inputs []Input
}

// JobsFromConfig converts the configured jobs; unnamed jobs become "job-<n>".
func JobsFromConfig(cfg *config.Config) []Job {
	jobs := make([]Job, len(cfg.Jobs))
	for i, jc := range cfg.Jobs {
		job := Job{Name: jc.Name, NPorts: jc.NPorts, Output: jc.Output}
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		for _, in := range jc.Inputs {
			job.Inputs = append(job.Inputs, Input{Path: in.Path, Ports: reconstruct.PortMapping(in.Ports)})
		}
		jobs[i] = job
	}

	return jobs
}

// JobFromSpecs builds a job from command-line "file:ports" specs.
func JobFromSpecs(name string, n int, output string, specs []portspec.Spec) Job {
	job := Job{Name: name, NPorts: n, Output: output}
	for _, s := range specs {
		job.Inputs = append(job.Inputs, Input{Path: s.Path, Ports: s.Ports})
	}

	return job
}

func (j Job) paths() []string {
	out := make([]string, len(j.Inputs))
	for i, in := range j.Inputs {
		out[i] = in.Path
	}

	return out
}

// output returns the path the job writes: Output, or the default name next to
// the first input.
func (j Job) output() string {
	if j.Output != "" || len(j.Inputs) == 0 {
		return j.Output
	}
	paths := j.paths()

	return portspec.DefaultOutputPath(filepath.Dir(paths[0]), j.NPorts, paths)
}

func (j Job) mappings() []reconstruct.PortMapping {
	out := make([]reconstruct.PortMapping, len(j.Inputs))
	for i, in := range j.Inputs {
		out[i] = in.Ports
	}

	return out
}

// Report describes a finished job.
type Report struct {
	Job          string        `json:"job"`
	Output       string        `json:"output"`
	NPorts       int           `json:"n_ports"`
	Inputs       int           `json:"inputs"`
	Coverage     [][]int       `json:"coverage"`
	Uncovered    []int         `json:"uncovered_ports,omitempty"`
	FullPortSets []string      `json:"full_port_sets,omitempty"`
	Points       int           `json:"points"`
	Duration     time.Duration `json:"duration_ns"`

	coverage *reconstruct.Coverage
}

// CoverageTable returns the coverage counts in printable form.
func (r *Report) CoverageTable() string {
	if r.coverage == nil {
		return ""
	}

	return r.coverage.String()
}

// Runner executes jobs.
type Runner struct {
	logger  *zap.Logger
	workers int
	strict  bool

	reconstructOpts []reconstruct.Option
	writeOpts       []touchstone.Option
}

// NewRunner creates a runner with the config's worker count, strictness and
// reconstruct/output options. A nil logger is replaced by zap.NewNop().
func NewRunner(logger *zap.Logger, cfg *config.Config) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &Runner{
		logger:          logger,
		workers:         workers,
		strict:          cfg.Reconstruct.Strict,
		reconstructOpts: cfg.ReconstructOptions(),
		writeOpts:       cfg.WriteOptions(),
	}
}

// Merge runs one job: check the output path, report consistency facts (or
// fail on them in strict mode), load every input, reconstruct, and write.
func (r *Runner) Merge(ctx context.Context, job Job) (*Report, error) {
	start := time.Now()
	log := r.logger.With(zap.String("job", job.Name), zap.Int("n_ports", job.NPorts))

	if len(job.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if job.NPorts < 1 {
		return nil, reconstruct.ErrBadPortCount
	}
	paths := job.paths()
	mappings := job.mappings()

	output := job.output()
	if err := portspec.CheckOutput(output, paths); err != nil {
		return nil, err
	}

	// Facts the interactive tool used to ask about.
	var full []string
	for _, in := range job.Inputs {
		if reconstruct.IsFullPortSet(in.Ports, job.NPorts) {
			full = append(full, in.Path)
			log.Warn("input selects every DUT port and may already be a full network",
				zap.String("input", in.Path))
		}
	}
	uncovered := reconstruct.UncoveredPorts(job.NPorts, mappings)
	if len(uncovered) > 0 {
		log.Warn("DUT ports not covered by any input, their S-parameters will be zero",
			zap.Ints("ports", uncovered))
	}
	if r.strict {
		if len(full) > 0 {
			return nil, fmt.Errorf("%s: %w", strings.Join(full, ", "), ErrFullPortSet)
		}
		if len(uncovered) > 0 {
			return nil, fmt.Errorf("%v: %w", uncovered, ErrUncoveredPorts)
		}
	}

	nets := make([]*network.Network, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := touchstone.ReadFile(p)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded measurement", zap.String("input", p),
			zap.Int("ports", n.Ports()), zap.Int("points", n.Len()))
		nets[i] = n
	}

	stem := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	opts := append(append([]reconstruct.Option{}, r.reconstructOpts...), reconstruct.WithName(stem))
	res, err := reconstruct.Reconstruct(nets, mappings, job.NPorts, opts...)
	if err != nil {
		return nil, err
	}

	comments := []string{fmt.Sprintf("%d-port network reconstructed from %d measurements", job.NPorts, len(paths))}
	for _, in := range job.Inputs {
		comments = append(comments, fmt.Sprintf("%s: %s", filepath.Base(in.Path), in.Ports))
	}
	wopts := append(append([]touchstone.Option{}, r.writeOpts...), touchstone.WithComments(comments...))
	if err = touchstone.WriteFile(output, res.Network, wopts...); err != nil {
		return nil, err
	}

	report := &Report{
		Job:          job.Name,
		Output:       output,
		NPorts:       job.NPorts,
		Inputs:       len(paths),
		Coverage:     res.Coverage.Rows(),
		Uncovered:    uncovered,
		FullPortSets: full,
		Points:       res.Network.Len(),
		Duration:     time.Since(start),
		coverage:     res.Coverage,
	}
	log.Info("reconstructed network written",
		zap.String("output", output),
		zap.Int("points", report.Points),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// CheckOutputs resolves every job's output and returns ErrOutputConflict when
// two jobs write the same file or a job writes a file another job reads.
// Paths are compared in absolute form.
func CheckOutputs(jobs []Job) error {
	writers := make(map[string]int, len(jobs))
	for i, job := range jobs {
		if len(job.Inputs) == 0 {
			continue
		}
		out, err := filepath.Abs(job.output())
		if err != nil {
			return err
		}
		if prev, ok := writers[out]; ok {
			return fmt.Errorf("jobs %s and %s both write %s: %w", jobs[prev].Name, job.Name, out, ErrOutputConflict)
		}
		writers[out] = i
	}
	for i, job := range jobs {
		for _, p := range job.paths() {
			in, err := filepath.Abs(p)
			if err != nil {
				return err
			}
			if w, ok := writers[in]; ok && w != i {
				return fmt.Errorf("job %s writes %s, an input of job %s: %w", jobs[w].Name, in, job.Name, ErrOutputConflict)
			}
		}
	}

	return nil
}

// Run merges jobs on up to the configured number of workers. Reports keep the
// order of jobs; the first failure cancels jobs that have not started loading.
// Output conflicts between jobs are rejected before any job starts.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]*Report, error) {
	if err := CheckOutputs(jobs); err != nil {
		return nil, err
	}
	reports := make([]*Report, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)
	for i, job := range jobs {
		eg.Go(func() error {
			report, err := r.Merge(egCtx, job)
			if err != nil {
				r.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			reports[i] = report
			return nil
		})
	}
	err := eg.Wait()

	return reports, err
}
