package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jrazmi/todos/core/repositories"
	"github.com/jrazmi/todos/infrastructure/postgresdb"
	"github.com/jrazmi/todos/infrastructure/sqlitedb"
	"github.com/jrazmi/todos/sdk/environment"
	"github.com/jrazmi/todos/sdk/logger"
	"github.com/spf13/cobra"
)

const migrateTimeout = 5 * time.Minute

func newMigrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			if err := Migrate(ctx, app.Prefix, app.Log); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}

	cmd.AddCommand(newMigrateStatusCmd(app))

	return cmd
}

func newMigrateStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := repositories.NewFromEnv(cmd.Context(), app.Prefix, app.Log, repositories.WithoutMigrations())
			if err != nil {
				return err
			}
			defer repos.Close()

			migrationsFS, dir := repos.MigrationsFS()
			statuses, err := repos.SchemaMigration.Status(cmd.Context(), migrationsFS, dir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTATE\tCHECKSUM\tAPPLIED AT")
			for _, st := range statuses {
				appliedAt := "-"
				if st.AppliedAt != nil {
					appliedAt = st.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%.8s\t%s\n", st.Version, st.State, st.Checksum, appliedAt)
			}
			return w.Flush()
		},
	}
}

// Migrate checks the configured database is reachable and applies any
// pending migrations.
func Migrate(ctx context.Context, prefix string, log *logger.Logger) error {
	var cfg repositories.Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing repositories config: %w", err)
	}

	log.InfoContext(ctx, "migration started", "driver", cfg.Driver)

	switch cfg.Driver {
	case repositories.DriverPostgres:
		pool, err := postgresdb.NewFromEnv(prefix, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return fmt.Errorf("configuring postgres support: %w", err)
		}
		defer pool.Close()

		if err := postgresdb.StatusCheck(ctx, pool); err != nil {
			return fmt.Errorf("database status check failed: %w", err)
		}

		log.InfoContext(ctx, "database status check successful", "step", "running migrations")

		if err := postgresdb.Migrate(ctx, pool, log.Logger); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

	case repositories.DriverSQLite:
		// Opening a SQLite database applies its migrations.
		db, err := sqlitedb.NewFromEnv(ctx, prefix, sqlitedb.WithLogger(log.Logger))
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		defer db.Close()

		if err := sqlitedb.StatusCheck(ctx, db); err != nil {
			return fmt.Errorf("database status check failed: %w", err)
		}

	default:
		return fmt.Errorf("%w: %q", repositories.ErrUnknownDriver, cfg.Driver)
	}

	log.InfoContext(ctx, "migrations completed successfully")
	return nil
}
