package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/app/replay"
	"github.com/lexcodex/hanoibench/hanoi"
)

func newReplayCmd() *cobra.Command {
	var disks int
	var runID string
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "replay [moves-file]",
		Short: "Step through a move sequence or a stored run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				analysis hanoi.SolutionAnalysis
				title    string
			)
			switch {
			case runID != "":
				store, err := openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				record, ok, err := store.Load(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("run %s not found", runID)
				}
				disks = record.Attempt.Disks
				analysis = record.Verdict.Analysis
				title = "run " + record.ID
			case len(args) == 1 || disks > 0:
				if disks < 1 {
					return errors.New("--disks is required when replaying a moves file")
				}
				path := "-"
				if len(args) == 1 {
					path = args[0]
				}
				data, err := readInput(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				moves, err := parseMoves(data)
				if err != nil {
					return err
				}
				analysis = hanoi.New(disks).ValidateCompleteSolution(moves)
				title = path
			default:
				return errors.New("give a moves file with --disks, or --run")
			}
			model := replay.New(disks, analysis, replay.WithTitle(title), replay.WithInterval(interval))
			return replay.Run(cmd.Context(), model)
		},
	}
	cmd.Flags().IntVarP(&disks, "disks", "n", 0, "Number of disks for a moves file")
	cmd.Flags().StringVar(&runID, "run", "", "Replay a stored run by id")
	cmd.Flags().DurationVar(&interval, "interval", 600*time.Millisecond, "Autoplay delay between moves")
	return cmd
}
