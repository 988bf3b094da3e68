package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/fitness-manager/internal/persistence/sqlstore"
)

// QuietLogger returns a logger that discards output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewStore opens a migrated SQLite store in a temporary directory. The store
// is closed when the test finishes.
func NewStore(tb testing.TB) *sqlstore.Store {
	tb.Helper()

	cfg := sqlstore.Config{
		Dialect:      sqlstore.DialectSQLite,
		Path:         filepath.Join(tb.TempDir(), "fitness.db"),
		MaxOpenConns: 4,
	}
	store, err := sqlstore.Open(context.Background(), cfg, QuietLogger())
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate store: %v", err)
	}
	return store
}
