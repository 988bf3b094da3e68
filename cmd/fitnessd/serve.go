package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/config"
	httptransport "github.com/example/fitness-manager/internal/http"
	"github.com/example/fitness-manager/internal/persistence/sqlstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations and serve the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.Migrate(ctx); err != nil {
			rt.logger.Error("failed to apply migrations", "error", err)
			return err
		}

		handler, err := newHandler(ctx, rt.store, rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		return serve(ctx, handler, rt.cfg.HTTPPort, rt.logger)
	},
}

// newHandler wires services, handlers and middleware on top of the store and
// seeds the bootstrap administrator when one is configured.
func newHandler(ctx context.Context, store *sqlstore.Store, cfg config.Config, logger *slog.Logger) (http.Handler, error) {
	services := application.NewServices(application.Repositories{
		Users:        store.Users,
		Coaches:      store.Coaches,
		Facilities:   store.Facilities,
		Bookings:     store.Bookings,
		Events:       store.Events,
		Participants: store.Participants,
		Attendance:   store.Attendance,
		Progress:     store.Progress,
		Accounts:     store.Accounts,
		Sessions:     store.Sessions,
		References:   store,
	}, application.AuthOptions{
		TokenGenerator: func() string { return randomHex(32) },
		Now:            time.Now,
		SessionTTL:     cfg.SessionTTL,
	}, logger)

	if cfg.AdminEmail != "" {
		created, err := services.Accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("failed to seed administrator", "error", err)
			return nil, fmt.Errorf("seed administrator: %w", err)
		}
		if created {
			logger.Info("administrator account created", "email", cfg.AdminEmail)
		}
	}

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(services.Auth, services.Accounts, logger),
		Resources: httptransport.NewResources(services, logger),
		Progress:  httptransport.NewProgressHistoryHandler(services.Progress, logger),
		System:    httptransport.NewSystemHandler(store, cfg.StaticDir, logger),
		Protect:   httptransport.RequireSession(services.Auth, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	}), nil
}

func serve(ctx context.Context, handler http.Handler, port int, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("fitness API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		return err
	}
	logger.Info("fitness API stopped")
	return nil
}
