package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hanoibench/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			api := &server.APIServer{
				Service: &server.Service{Runner: svc.runner, Runs: svc.store},
				Logger:  logger,
			}
			err = api.ServeContext(ctx, addr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	return cmd
}

// stdio joins stdin and stdout into one stream for JSON-RPC.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

func newRPCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rpc",
		Short: "Serve JSON-RPC 2.0 on stdin/stdout",
		Long: `Serve hanoi/parseMove, hanoi/validateMove, hanoi/validateSolution and
hanoi/check over stdin/stdout using Content-Length framing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			handler := &server.RPCHandler{
				Service: &server.Service{Runner: svc.runner, Runs: svc.store},
				Logger:  logger,
			}
			err = server.ServeRPC(ctx, stdio{Reader: cmd.InOrStdin(), Writer: cmd.OutOrStdout()}, handler)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
