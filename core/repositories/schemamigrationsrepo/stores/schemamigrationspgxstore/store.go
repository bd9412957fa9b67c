// Package schemamigrationspgxstore reads migration bookkeeping from Postgres.
package schemamigrationspgxstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/todos/infrastructure/postgresdb"
	"github.com/jrazmi/todos/sdk/logger"
)

// Store provides database access for SchemaMigration.
type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

// NewStore creates a new SchemaMigration store
func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) List(ctx context.Context) ([]schemamigrationsrepo.SchemaMigration, error) {
	const query = `SELECT version, checksum, applied_at FROM schema_migrations ORDER BY version`

	var migrations []schemamigrationsrepo.SchemaMigration

	rows, err := s.pool.Query(ctx, query)
	if err == nil {
		migrations, err = pgx.CollectRows(rows, pgx.RowToStructByName[schemamigrationsrepo.SchemaMigration])
	}

	if err := postgresdb.HandlePgError(err); err != nil {
		// Never migrated.
		if errors.Is(err, postgresdb.ErrUndefinedTable) {
			return nil, nil
		}
		return nil, err
	}

	return migrations, nil
}
