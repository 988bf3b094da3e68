package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestScanner_ScanMigrations(t *testing.T) {
	t.Run("orders files by numeric version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/010_add_index.sql":    {Data: []byte("CREATE INDEX idx ON t (a);")},
			"m/002_create_table.sql": {Data: []byte("-- table\nCREATE TABLE t (a INTEGER);")},
			"m/README.md":            {Data: []byte("ignored")},
		}

		migrations, err := NewScanner(fsys, "m").ScanMigrations()
		if err != nil {
			t.Fatalf("ScanMigrations returned error: %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != "002" || migrations[1].Version != "010" {
			t.Fatalf("unexpected order: %s, %s", migrations[0].Version, migrations[1].Version)
		}
		if migrations[0].Description != "create table" {
			t.Fatalf("unexpected description %q", migrations[0].Description)
		}
		if len(migrations[0].Checksum) != 64 {
			t.Fatalf("expected sha256 checksum, got %q", migrations[0].Checksum)
		}
	})

	t.Run("rejects badly named files", func(t *testing.T) {
		fsys := fstest.MapFS{"m/create.sql": {Data: []byte("CREATE TABLE t (a INTEGER);")}}

		_, err := NewScanner(fsys, "m").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects comment-only files", func(t *testing.T) {
		fsys := fstest.MapFS{"m/001_empty.sql": {Data: []byte("-- nothing here\n")}}

		_, err := NewScanner(fsys, "m").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/001_a.sql":  {Data: []byte("CREATE TABLE a (x INTEGER);")},
			"m/0001_b.sql": {Data: []byte("CREATE TABLE b (x INTEGER);")},
		}

		_, err := NewScanner(fsys, "m").ScanMigrations()
		if err == nil {
			t.Fatalf("expected error for duplicate versions")
		}
	})
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements(`
		-- leading comment
		CREATE TABLE a (x INTEGER);

		CREATE TABLE b (y INTEGER);
		-- trailing comment
	`)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[0] != "CREATE TABLE a (x INTEGER)" {
		t.Fatalf("unexpected first statement %q", statements[0])
	}
}
