package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/smatmerge/internal/config"
)

var (
	// Global flags
	verbose   bool
	logFormat string

	// Logger
	logger *zap.Logger
)

// newRootCmd builds the command tree. The root command itself merges
// "file:ports" measurements given as arguments.
func newRootCmd() *cobra.Command {
	opts := &mergeOptions{}
	root := &cobra.Command{
		Use:   "smatmerge [file:ports ...]",
		Short: "Reconstruct an N-port S-matrix from port-subset measurements",
		Long: `smatmerge fuses Touchstone measurements taken on different subsets of a
device's ports into one N-port network. Every S_ij is the average of all
measurements that observed it; cells nobody observed are zero.

Each argument is 'file.sNp:port1,port2,...' listing, in order, the DUT port
connected to each port of the file. Example for a 5-port DUT measured with a
4-port VNA:

  smatmerge --n-ports 5 meas_1234.s4p:1,2,3,4 meas_1235.s4p:1,2,3,5 \
      meas_1245.s4p:1,2,4,5 meas_1345.s4p:1,3,4,5 meas_2345.s4p:2,3,4,5`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			format := cfg.Logging.Format
			if logFormat != "" {
				format = logFormat
			}
			logger, err = newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runMerge(cmd, args, opts)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log encoding: json or console (default from SMATMERGE config)")
	addMergeFlags(root, opts)

	root.AddCommand(newBatchCmd())
	root.AddCommand(newCoverageCmd())

	return root
}

// newLogger builds a zap logger writing to w. --verbose forces debug level.
func newLogger(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	switch format {
	case "console":
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case "json", "":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(lvl))

	return zap.New(core), nil
}

// commandContext returns the command's context, or Background when run
// outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
