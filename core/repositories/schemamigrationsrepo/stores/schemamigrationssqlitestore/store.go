// Package schemamigrationssqlitestore reads migration bookkeeping from SQLite.
package schemamigrationssqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/todos/infrastructure/sqlitedb"
	"github.com/jrazmi/todos/sdk/logger"
)

// Store provides database access for SchemaMigration.
type Store struct {
	log *logger.Logger
	db  *sql.DB
}

// NewStore creates a new SchemaMigration store
func NewStore(log *logger.Logger, db *sql.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) List(ctx context.Context) ([]schemamigrationsrepo.SchemaMigration, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`).Scan(&exists)
	if err != nil {
		return nil, sqlitedb.HandleSQLiteError(err)
	}
	if exists == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT version, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, sqlitedb.HandleSQLiteError(err)
	}
	defer rows.Close()

	var migrations []schemamigrationsrepo.SchemaMigration
	for rows.Next() {
		var m schemamigrationsrepo.SchemaMigration
		var appliedAt string
		if err := rows.Scan(&m.Version, &m.Checksum, &appliedAt); err != nil {
			return nil, err
		}
		if m.AppliedAt, err = sqlitedb.ParseTime(appliedAt); err != nil {
			return nil, fmt.Errorf("migration %s applied_at: %w", m.Version, err)
		}
		migrations = append(migrations, m)
	}

	return migrations, rows.Err()
}
