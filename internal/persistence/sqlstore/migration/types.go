package migration

import (
	"context"
	"time"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version     string // numeric version, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string // sha256 of SQL
}

// Source lists the migrations available to apply.
type Source interface {
	ScanMigrations() ([]Migration, error)
}

// Executor runs migrations against a database and tracks what was applied.
type Executor interface {
	// ExecuteMigration runs a single migration within a transaction.
	ExecuteMigration(ctx context.Context, migration Migration) error
	// InitializeVersionTable creates the schema_migrations table if needed.
	InitializeVersionTable(ctx context.Context) error
	// RecordMigration marks a migration as applied.
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	// GetAppliedVersions returns all applied migrations in version order.
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}

// Status summarises the migration state of a database.
type Status struct {
	CurrentVersion    string
	PendingCount      int
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}
