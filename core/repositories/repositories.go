// Package repositories wires the repositories to the configured SQL engine.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo/stores/schemamigrationspgxstore"
	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo/stores/schemamigrationssqlitestore"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/repositories/todosrepo/stores/todospgxstore"
	"github.com/jrazmi/todos/core/repositories/todosrepo/stores/todossqlitestore"
	"github.com/jrazmi/todos/infrastructure/postgresdb"
	"github.com/jrazmi/todos/infrastructure/sqlitedb"
	"github.com/jrazmi/todos/schema"
	"github.com/jrazmi/todos/sdk/environment"
	"github.com/jrazmi/todos/sdk/logger"
)

// ErrUnknownDriver is returned for a DB_DRIVER other than postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// Set of supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects the SQL engine.
type Options struct {
	Driver string `env:"DB_DRIVER" default:"postgres"`
}

// Repositories holds the repositories of one process and the connection they
// share.
type Repositories struct {
	Driver          string
	Todo            *todosrepo.Repository
	SchemaMigration *schemamigrationsrepo.Repository

	close func()
}

// MigrationsFS returns the migration set of the engine in use.
func (r *Repositories) MigrationsFS() (fs.FS, string) {
	if r.Driver == DriverSQLite {
		return schema.SQLiteMigrationsFS, schema.SQLiteMigrationsDir
	}
	return schema.PGMigrationsFS, schema.PGMigrationsDir
}

type options struct {
	skipMigrations bool
}

// Option configures NewFromEnv.
type Option func(*options)

// WithoutMigrations opens the database as it is, leaving pending migrations
// unapplied.
func WithoutMigrations() Option {
	return func(o *options) {
		o.skipMigrations = true
	}
}

// Close releases the underlying connection.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// NewFromEnv opens the configured engine, brings its schema up to date and
// builds the repositories on top of it.
func NewFromEnv(ctx context.Context, prefix string, log *logger.Logger, opts ...Option) (*Repositories, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing repositories config: %w", err)
	}

	switch cfg.Driver {
	case DriverPostgres:
		pg, err := postgresdb.NewFromEnv(prefix, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return nil, fmt.Errorf("configuring postgres support: %w", err)
		}
		if !o.skipMigrations {
			if err := postgresdb.Migrate(ctx, pg, log.Logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("migrating postgres: %w", err)
			}
		}
		return NewPostgresRepositories(log, pg), nil

	case DriverSQLite:
		sqliteOpts := []sqlitedb.Option{sqlitedb.WithLogger(log.Logger)}
		if o.skipMigrations {
			sqliteOpts = append(sqliteOpts, sqlitedb.WithoutMigrations())
		}

		db, err := sqlitedb.NewFromEnv(ctx, prefix, sqliteOpts...)
		if err != nil {
			return nil, fmt.Errorf("configuring sqlite support: %w", err)
		}
		return NewSQLiteRepositories(log, db), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// NewPostgresRepositories builds the repositories on a pgx pool.
func NewPostgresRepositories(log *logger.Logger, pg *postgresdb.Pool) *Repositories {
	return &Repositories{
		Driver:          DriverPostgres,
		Todo:            todosrepo.NewRepository(log, todospgxstore.NewStore(log, pg)),
		SchemaMigration: schemamigrationsrepo.NewRepository(log, schemamigrationspgxstore.NewStore(log, pg)),
		close:           pg.Close,
	}
}

// NewSQLiteRepositories builds the repositories on a SQLite database.
func NewSQLiteRepositories(log *logger.Logger, db *sql.DB) *Repositories {
	return &Repositories{
		Driver:          DriverSQLite,
		Todo:            todosrepo.NewRepository(log, todossqlitestore.NewStore(log, db)),
		SchemaMigration: schemamigrationsrepo.NewRepository(log, schemamigrationssqlitestore.NewStore(log, db)),
		close:           func() { db.Close() },
	}
}
