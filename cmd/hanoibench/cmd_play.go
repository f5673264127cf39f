package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/harness"
)

func newPlayCmd() *cobra.Command {
	var disks, maxIterations int
	var strategy string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drive an iterative session with the optimal proposer and check the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if disks < 1 || disks > maxSolveDisks {
				return fmt.Errorf("--disks must be between 1 and %d, got %d", maxSolveDisks, disks)
			}
			strat, err := harness.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.close()

			out := cmd.OutOrStdout()
			session := harness.NewSession(disks, strat, maxIterations)
			err = harness.Play(cmd.Context(), session, harness.CanonicalProposer{}, func(step harness.StepResult) {
				fmt.Fprintf(out, "%4d  %-12s %-40s %s\n", step.Iteration, step.Text, step.Message, step.Pegs)
			})
			if err != nil {
				return err
			}
			record, err := svc.runner.Evaluate(cmd.Context(), session.Attempt())
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			printRecord(out, record)
			return nil
		},
	}
	cmd.Flags().IntVarP(&disks, "disks", "n", 3, "Number of disks")
	cmd.Flags().StringVar(&strategy, "strategy", string(harness.StrategyHybrid), "Strategy label: single, hybrid or multi")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Iteration cap (default: derived from --disks)")
	return cmd
}
