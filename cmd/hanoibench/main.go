package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/config"
)

var (
	flagWorkspace string
	flagConfig    string
	flagLogLevel  string
	flagLogJSON   bool

	cfg    *config.Config
	logger = slog.Default()
)

// errGoalNotReached makes the process exit non-zero without extra output;
// the command has already reported the outcome.
var errGoalNotReached = errors.New("goal not reached")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errGoalNotReached) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hanoibench",
		Short:         "Validate and replay Tower of Hanoi move sequences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagWorkspace == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				flagWorkspace = wd
			}
			abs, err := filepath.Abs(flagWorkspace)
			if err != nil {
				return err
			}
			flagWorkspace = abs
			if flagConfig == "" {
				flagConfig = config.Path(flagWorkspace)
			}
			loaded, err := config.Load(flagWorkspace, flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
			level := cfg.Log.Level
			if flagLogLevel != "" {
				level = flagLogLevel
			}
			logger, err = newLogger(cmd.ErrOrStderr(), level, flagLogJSON || cfg.Log.JSON)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "Workspace directory (default: current directory)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config.yaml (default: <workspace>/hanoibench_config/config.yaml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")

	root.AddCommand(
		newValidateCmd(),
		newSolveCmd(),
		newCheckCmd(),
		newPlayCmd(),
		newReplayCmd(),
		newServeCmd(),
		newRPCCmd(),
		newWorkerCmd(),
		newSubmitCmd(),
		newRunsCmd(),
		newConfigCmd(),
	)
	return root
}
