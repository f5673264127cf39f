package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/harness"
)

func newCheckCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check [attempt-file]",
		Short: "Check a finished attempt, apply the acceptance criterion and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			attempt, err := parseAttempt(data)
			if err != nil {
				return err
			}
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.close()

			record, err := svc.runner.Evaluate(cmd.Context(), attempt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, record); err != nil {
					return err
				}
			} else {
				printRecord(out, record)
			}
			if !record.Accepted {
				return errGoalNotReached
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run record as JSON")
	return cmd
}

func printRecord(w io.Writer, r *harness.RunRecord) {
	fmt.Fprintf(w, "run:       %s\n", r.ID)
	fmt.Fprintf(w, "disks:     %d (%s)\n", r.Attempt.Disks, r.Attempt.Strategy)
	fmt.Fprintf(w, "solved:    %t\n", r.Verdict.Solved)
	if r.Attempt.Strategy.Iterative() {
		fmt.Fprintf(w, "timeout:   %t\n", r.Verdict.Timeout)
	}
	fmt.Fprintf(w, "accepted:  %t (%s)\n", r.Accepted, r.Criterion)
	a := r.Verdict.Analysis
	fmt.Fprintf(w, "moves:     %d valid, %d invalid of %d\n", a.ValidMoves, a.InvalidMoves, a.TotalMoves)
	if f := r.Verdict.Failure; f != nil && f.FirstError != nil {
		fmt.Fprintf(w, "first error: move %d %s: %s\n", f.FirstError.Index, f.FirstError.Text, f.FirstError.Message)
	}
}
