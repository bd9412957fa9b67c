// Package schemamigrationsrepo reports which schema migrations a database has
// applied.
package schemamigrationsrepo

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jrazmi/todos/schema"
	"github.com/jrazmi/todos/sdk/logger"
)

// Storer reads the migration bookkeeping table.
type Storer interface {
	List(ctx context.Context) ([]SchemaMigration, error)
}

// Repository provides access to schemaMigration storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
}

// NewRepository creates a new SchemaMigration repository
func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

// List returns applied migrations ordered by version. A database that has
// never been migrated has none.
func (r *Repository) List(ctx context.Context) ([]SchemaMigration, error) {
	applied, err := r.storer.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schema migrations: %w", err)
	}
	return applied, nil
}

// Status compares the migration files under dir with what the database has
// applied. Versions recorded in the database but absent from the files are
// reported as missing.
func (r *Repository) Status(ctx context.Context, migrationsFS fs.FS, dir string) ([]Status, error) {
	applied, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	files, err := schema.Files(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("get migration files: %w", err)
	}

	byVersion := make(map[string]SchemaMigration, len(applied))
	for _, m := range applied {
		byVersion[m.Version] = m
	}

	statuses := make([]Status, 0, len(files))
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("read migration file: %w", err)
		}

		st := Status{Version: file, State: StatePending, Checksum: schema.Checksum(content)}
		if m, ok := byVersion[file]; ok {
			appliedAt := m.AppliedAt
			st.AppliedAt = &appliedAt
			st.State = StateApplied
			if m.Checksum != st.Checksum {
				st.State = StateDrifted
			}
			delete(byVersion, file)
		}
		statuses = append(statuses, st)
	}

	for _, m := range byVersion {
		appliedAt := m.AppliedAt
		statuses = append(statuses, Status{Version: m.Version, State: StateMissing, Checksum: m.Checksum, AppliedAt: &appliedAt})
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Version < statuses[j].Version })

	return statuses, nil
}
