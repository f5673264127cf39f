package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/hanoi"
)

func newValidateCmd() *cobra.Command {
	var disks int
	var file string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate [move...]",
		Short: "Replay a move sequence and report the first rule violation",
		Long: `Replay moves on a fresh puzzle. Moves come from the arguments, from --file,
or from stdin, as a JSON array, a YAML list, or one move per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if disks < 1 {
				return fmt.Errorf("--disks must be at least 1, got %d", disks)
			}
			moves := args
			if len(moves) == 0 {
				data, err := readInput(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if moves, err = parseMoves(data); err != nil {
					return err
				}
			}
			analysis := hanoi.New(disks).ValidateCompleteSolution(moves)
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, analysis); err != nil {
					return err
				}
			} else {
				printAnalysis(out, analysis)
			}
			if !analysis.GoalAchieved {
				return errGoalNotReached
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&disks, "disks", "n", 3, "Number of disks")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read moves from file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(w io.Writer, a hanoi.SolutionAnalysis) {
	for _, record := range a.MoveDetails {
		mark := "ok "
		if record.Status != hanoi.StatusValid {
			mark = "ERR"
		}
		fmt.Fprintf(w, "%s %3d  %-12s %s\n", mark, record.Index, record.Text, record.Message)
	}
	fmt.Fprintf(w, "\nmoves: %d  valid: %d  invalid: %d\n", a.TotalMoves, a.ValidMoves, a.InvalidMoves)
	fmt.Fprintf(w, "final state: %s\n", a.FinalState)
	if a.GoalAchieved {
		fmt.Fprintln(w, "goal reached")
		return
	}
	fmt.Fprintln(w, "goal not reached")
	if len(a.ErrorSummary) > 0 {
		fmt.Fprintln(w, "errors:\n  "+strings.Join(a.ErrorSummary, "\n  "))
	}
}
