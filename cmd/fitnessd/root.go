package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/config"
	"github.com/example/fitness-manager/internal/logging"
	"github.com/example/fitness-manager/internal/persistence/sqlstore"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "fitnessd",
	Short: "Fitness and gym management API server",
	Long: `fitnessd serves the gym management REST API: users, coaches, facilities,
bookings, events, participants, attendance and fitness progress.

CONFIGURATION:

  Settings come from FITNESS_ prefixed environment variables. A .env file in
  the working directory is read first when present; variables already set in
  the environment win.

  FITNESS_HTTP_PORT      listen port
  FITNESS_DB_DRIVER      sqlite, mysql or postgres
  FITNESS_DB_PATH        database file for sqlite
  FITNESS_DB_HOST/PORT/USER/PASSWORD/NAME   network store

EXAMPLES:

  fitnessd serve                 # migrate and start the API
  fitnessd migrate               # apply pending schema migrations
  fitnessd migrate status        # show applied and pending migrations`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to read before the environment (default .env)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// runtime holds what every subcommand needs: parsed settings, the process
// logger and an open store.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	store  *sqlstore.Store

	logCloser io.Closer
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging())
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	store, err := sqlstore.Open(ctx, cfg.Store(), logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		_ = closer.Close()
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, store: store, logCloser: closer}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Error("failed to close storage", "error", err)
	}
	_ = rt.logCloser.Close()
}
