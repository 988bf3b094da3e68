package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/client"
)

var (
	serverURL string
	tokenFile string
	verbose   bool

	api *client.Client
	agg *client.Aggregator
)

var rootCmd = &cobra.Command{
	Use:   "gymctl",
	Short: "Command line client for the fitness API",
	Long: `gymctl signs in to a fitness API server and shows the dashboard for
your role.

QUICK START:

  $ gymctl register --name "Sam" --email sam@example.com
  $ gymctl login sam@example.com
  $ gymctl dashboard
  $ gymctl book 3 2025-04-01T10:00

STUDENTS:   book, join, progress, profile
COACHES:    attend, roster (shown on the dashboard)
ADMINS:     review, pending bookings (shown on the dashboard)

The session token is kept in the token file between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		token, err := readToken(tokenFile)
		if err != nil {
			return err
		}
		api, err = client.New(serverURL, client.WithLogger(logger), client.WithToken(token))
		if err != nil {
			return err
		}
		agg = client.NewAggregator(api, logger)
		return nil
	},
}

func init() {
	defaultServer := os.Getenv("GYMCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "API base url (GYMCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", defaultTokenFile(), "where the session token is stored")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every API request")
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gymctl-session"
	}
	return filepath.Join(dir, "gymctl", "session")
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeToken(path, token string) error {
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove token file: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// signedIn resumes the stored session and loads every collection. Collections
// that fail to load are reported but do not stop the command.
func signedIn(ctx context.Context) (client.Principal, error) {
	principal, err := agg.Resume(ctx)
	var loadErr *client.LoadError
	switch {
	case errors.As(err, &loadErr):
		warn("could not load %s: %v", loadErr.Collection, loadErr.Err)
	case errors.Is(err, client.ErrNotSignedIn) || client.StatusCode(err) == http.StatusUnauthorized:
		return client.Principal{}, errors.New("not signed in, run 'gymctl login' first")
	case err != nil:
		return client.Principal{}, err
	}

	var failures client.LoadErrors
	if err := agg.Load(ctx); errors.As(err, &failures) {
		for _, f := range failures {
			warn("could not load %s: %v", f.Collection, f.Err)
		}
	} else if err != nil {
		return principal, err
	}
	return principal, nil
}
