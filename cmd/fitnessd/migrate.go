package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/persistence/sqlstore/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every pending schema migration for the configured store.

Migrations are embedded in the binary, one set per driver, and recorded in
the schema_migrations table. Use 'fitnessd migrate status' to inspect the
schema without changing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		color.Green("✓ schema is up to date")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		status, err := rt.store.MigrationStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("read migration status: %w", err)
		}
		printStatus(cmd, status)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

func printStatus(cmd *cobra.Command, status *migration.Status) {
	out := cmd.OutOrStdout()
	faint := color.New(color.Faint)
	current := status.CurrentVersion
	if current == "" {
		current = "none"
	}
	fmt.Fprintf(out, "current version: %s\n", current)

	for _, applied := range status.AppliedMigrations {
		fmt.Fprintf(out, "%s %s %s\n",
			color.GreenString("applied"),
			applied.Version,
			faint.Sprint(applied.AppliedAt.Format("2006-01-02 15:04:05")))
	}
	for _, pending := range status.PendingMigrations {
		fmt.Fprintf(out, "%s %s %s\n",
			color.YellowString("pending"),
			pending.Version,
			faint.Sprint(pending.Description))
	}
	if status.PendingCount == 0 {
		fmt.Fprintln(out, "no pending migrations")
	}
}
