package schemamigrationsrepo_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/todos/core/repositories/schemamigrationsrepo/stores/schemamigrationssqlitestore"
	"github.com/jrazmi/todos/infrastructure/sqlitedb"
	"github.com/jrazmi/todos/schema"
	"github.com/jrazmi/todos/sdk/logger"
)

func newRepository(t *testing.T, opts ...sqlitedb.Option) (*schemamigrationsrepo.Repository, func() error) {
	t.Helper()

	log := logger.NewDiscard()
	opts = append(opts, sqlitedb.WithLogger(log.Logger))
	db, err := sqlitedb.NewTestDB(context.Background(), filepath.Join(t.TempDir(), "todos.sqlite"), opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrate := func() error { return sqlitedb.Migrate(context.Background(), db, log.Logger) }
	return schemamigrationsrepo.NewRepository(log, schemamigrationssqlitestore.NewStore(log, db)), migrate
}

func states(statuses []schemamigrationsrepo.Status) map[string]schemamigrationsrepo.State {
	m := make(map[string]schemamigrationsrepo.State, len(statuses))
	for _, s := range statuses {
		m[s.Version] = s.State
	}
	return m
}

func TestStatusPendingThenApplied(t *testing.T) {
	ctx := context.Background()
	repo, migrate := newRepository(t, sqlitedb.WithoutMigrations())

	applied, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("fresh database has %d applied migrations", len(applied))
	}

	statuses, err := repo.Status(ctx, schema.SQLiteMigrationsFS, schema.SQLiteMigrationsDir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, s := range statuses {
		if s.State != schemamigrationsrepo.StatePending || s.AppliedAt != nil {
			t.Errorf("%s = %s, want pending", s.Version, s.State)
		}
	}

	if err := migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	statuses, err = repo.Status(ctx, schema.SQLiteMigrationsFS, schema.SQLiteMigrationsDir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(statuses) == 0 {
		t.Fatal("no statuses")
	}
	for _, s := range statuses {
		if s.State != schemamigrationsrepo.StateApplied || s.AppliedAt == nil {
			t.Errorf("%s = %s, want applied", s.Version, s.State)
		}
	}
}

func TestStatusDriftedPendingMissing(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	files, err := schema.Files(schema.SQLiteMigrationsFS, schema.SQLiteMigrationsDir)
	if err != nil || len(files) == 0 {
		t.Fatalf("files = %v, %v", files, err)
	}
	first := files[0]

	edited := fstest.MapFS{
		"m/" + first:       {Data: []byte("-- edited after it was applied\n")},
		"m/999_future.sql": {Data: []byte("SELECT 1;\n")},
	}

	statuses, err := repo.Status(ctx, edited, "m")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	got := states(statuses)
	if got[first] != schemamigrationsrepo.StateDrifted {
		t.Errorf("%s = %s, want drifted", first, got[first])
	}
	if got["999_future.sql"] != schemamigrationsrepo.StatePending {
		t.Errorf("999_future.sql = %s, want pending", got["999_future.sql"])
	}

	onlyFuture := fstest.MapFS{
		"m/999_future.sql": {Data: []byte("SELECT 1;\n")},
	}
	statuses, err = repo.Status(ctx, onlyFuture, "m")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got := states(statuses); got[first] != schemamigrationsrepo.StateMissing {
		t.Errorf("%s = %s, want missing", first, got[first])
	}
	if statuses[0].Version != first {
		t.Errorf("statuses not ordered by version: %s first", statuses[0].Version)
	}
}
