package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/choosyhq/sessiond/internal/session/app"
	"github.com/choosyhq/sessiond/internal/session/store"
	"github.com/choosyhq/sessiond/internal/session/store/drivers/postgres"
	"github.com/choosyhq/sessiond/internal/session/store/drivers/sqlite"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Applies pending migrations against the database the environment
points at (DATABASE_URL for PostgreSQL, DATABASE_FILE for SQLite).
The server does this on startup too; this command exists for pipelines
that migrate before deploying.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()

			var (
				st  store.Store
				err error
			)
			switch {
			case strings.HasPrefix(cfg.DatabaseURL, "postgres://"),
				strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
				st, err = postgres.NewStore(context.Background(), cfg.DatabaseURL)
			default:
				st, err = sqlite.NewStore(cfg.DatabaseFile)
			}
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.ApplyMigrations(); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
