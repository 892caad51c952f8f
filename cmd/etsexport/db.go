package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/database"
)

func newDBCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the export history database",
	}

	cmd.AddCommand(
		newDBSubCmd(root, "status", "Show applied and pending migrations", nil),
		newDBSubCmd(root, "migrate", "Apply pending migrations", (*database.DB).Migrate),
		newDBSubCmd(root, "rollback", "Roll back the latest migration", (*database.DB).MigrateDown),
	)

	return cmd
}

// newDBSubCmd opens the configured database, runs action (if any) and
// prints the resulting migration status.
func newDBSubCmd(root *rootOptions, use, short string, action func(*database.DB, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, database.FromConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close() //nolint:errcheck // read-only after action

			if action != nil {
				if err := action(db, ctx); err != nil {
					return err
				}
			}

			status, err := db.MigrationStatus(ctx)
			if err != nil {
				return err
			}
			printMigrationStatus(cmd.OutOrStdout(), db.Path(), status)
			return nil
		},
	}
}

func printMigrationStatus(w io.Writer, path string, status *database.MigrationStatus) {
	fmt.Fprintf(w, "%s: %d applied, %d pending\n", path, len(status.Applied), len(status.Pending))
	for _, a := range status.Applied {
		fmt.Fprintf(w, "  applied  %s  %s\n", a.Version, a.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range status.Pending {
		fmt.Fprintf(w, "  pending  %s  %s\n", m.Version, m.Name)
	}
}
