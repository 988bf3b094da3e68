package sqlstore

import (
	"context"
	"embed"
	"path"

	"github.com/example/fitness-manager/internal/persistence/sqlstore/migration"
)

//go:embed migrations
var migrationFiles embed.FS

func (s *Store) migrationManager() *migration.Manager {
	source := migration.NewScanner(migrationFiles, path.Join("migrations", string(s.dialect)))
	return migration.NewManager(source, migration.NewSQLExecutor(s.db), s.logger)
}

// Migrate applies every pending schema migration for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrationManager().RunMigrations(ctx)
}

// MigrationStatus reports applied and pending migrations without changing
// the schema.
func (s *Store) MigrationStatus(ctx context.Context) (*migration.Status, error) {
	return s.migrationManager().Status(ctx)
}
