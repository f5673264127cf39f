package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/harness"
)

func newWorkerCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Check attempts from the Redis queue and publish run records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency <= 0 {
				concurrency = cfg.Queue.Concurrency
			}
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.close()
			q, err := openQueue()
			if err != nil {
				return err
			}
			defer q.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			pool := &harness.Pool{
				Runner:      svc.runner,
				Source:      q,
				Sink:        q,
				Concurrency: concurrency,
				Logger:      logger,
			}
			return pool.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Worker count (default: queue.concurrency from config)")
	return cmd
}

func newSubmitCmd() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "submit [attempt-file]",
		Short: "Push an attempt onto the Redis queue",
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
			if attempt.ID == "" {
				attempt.ID = uuid.NewString()
			}
			q, err := openQueue()
			if err != nil {
				return err
			}
			defer q.Close()

			out := cmd.OutOrStdout()
			if wait <= 0 {
				if err := q.Push(cmd.Context(), attempt); err != nil {
					return err
				}
				fmt.Fprintln(out, attempt.ID)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			records, err := q.Subscribe(ctx)
			if err != nil {
				return err
			}
			if err := q.Push(ctx, attempt); err != nil {
				return err
			}
			logger.Info("attempt queued, waiting for result", "attempt_id", attempt.ID)
			for record := range records {
				if record.ID != attempt.ID {
					continue
				}
				printRecord(out, record)
				if !record.Accepted {
					return errGoalNotReached
				}
				return nil
			}
			return fmt.Errorf("no result for %s within %s", attempt.ID, wait)
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "Wait this long for the run record")
	return cmd
}
