// Package migration applies versioned schema changes to the store.
//
// Migrations are plain SQL files named {version}_{description}.sql and are
// read from an fs.FS, usually an embedded directory per database dialect.
// Applied versions are tracked in the schema_migrations table so each file
// runs once, in ascending version order, inside its own transaction.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewScanner(files, "migrations/sqlite"), migration.NewSQLExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
