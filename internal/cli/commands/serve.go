package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/barklog/pkg/config"
	"github.com/ccollicutt/barklog/pkg/server"
	"github.com/ccollicutt/barklog/pkg/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <config-file>",
		Short: "Serve saved days over HTTP",
		Long: `Serve the configured store over a read-only HTTP API.

Endpoints:
  GET /healthz
  GET /api/v1/days
  GET /api/v1/days/{date}
  GET /metrics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, addr string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Store.Dir == "" {
		return fmt.Errorf("store.dir is not set in %s", args[0])
	}
	st, err := store.New(cfg.Store.Dir)
	if err != nil {
		return err
	}

	opts := server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if addr != "" {
		opts.Addr = addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("serving", "addr", opts.Addr, "store", st.Dir())
	if err := server.New(st, opts).Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
