package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/hanoi"
)

// Solutions past this size are too long to print usefully.
const maxSolveDisks = 20

func newSolveCmd() *cobra.Command {
	var disks int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print the optimal move sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			if disks < 1 || disks > maxSolveDisks {
				return fmt.Errorf("--disks must be between 1 and %d, got %d", maxSolveDisks, disks)
			}
			moves := hanoi.Solve(disks)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, moves)
			}
			for _, m := range moves {
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&disks, "disks", "n", 3, "Number of disks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print moves as a JSON array")
	return cmd
}
