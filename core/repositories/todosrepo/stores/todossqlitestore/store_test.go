package todossqlitestore_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/repositories/todosrepo/stores/todossqlitestore"
	"github.com/jrazmi/todos/core/scaffolding/fop"
	"github.com/jrazmi/todos/infrastructure/sqlitedb"
	"github.com/jrazmi/todos/sdk/logger"
)

func newTestRepository(t *testing.T) *todosrepo.Repository {
	t.Helper()

	log := logger.NewDiscard()
	db, err := sqlitedb.NewTestDB(context.Background(), filepath.Join(t.TempDir(), "todos.sqlite"), sqlitedb.WithLogger(log.Logger))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return todosrepo.NewRepository(log, todossqlitestore.NewStore(log, db))
}

// seed inserts n todos with api ids n..1 so insertion order differs from
// api_id order. Every fifth todo is completed.
func seed(t *testing.T, repo *todosrepo.Repository, n int) {
	t.Helper()

	inputs := make([]todosrepo.CreateTodo, 0, n)
	for i := n; i >= 1; i-- {
		inputs = append(inputs, todosrepo.CreateTodo{
			APIID:     i,
			UserID:    (i-1)/10 + 1,
			Title:     "todo",
			Image:     "3",
			Completed: i%5 == 0,
		})
	}

	got, err := repo.CreateBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if got != n {
		t.Fatalf("inserted %d, want %d", got, n)
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	todo, err := repo.Create(ctx, todosrepo.CreateTodo{APIID: 9, UserID: 2, Title: "buy milk", Image: "5"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != todo.ID || got.APIID != 9 || got.UserID != 2 || got.Title != "buy milk" || got.Image != "5" || got.Completed {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(todo.CreatedAt) || !got.UpdatedAt.Equal(todo.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want %v", got.CreatedAt, got.UpdatedAt, todo.CreatedAt)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, todosrepo.ErrNotFound) {
		t.Errorf("GetByID(unknown) err = %v, want ErrNotFound", err)
	}

	_, err = repo.Create(ctx, todosrepo.CreateTodo{APIID: 9, UserID: 2, Title: "again"})
	if !errors.Is(err, sqlitedb.ErrDBDuplicatedEntry) {
		t.Errorf("Create(dup api_id) err = %v, want duplicated entry", err)
	}
}

func TestCreateBatchSkipsExisting(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seed(t, repo, 5)

	n, err := repo.CreateBatch(ctx, []todosrepo.CreateTodo{
		{APIID: 5, UserID: 1, Title: "exists"},
		{APIID: 6, UserID: 1, Title: "new"},
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted %d, want 1", n)
	}

	total, _ := repo.Count(ctx, todosrepo.QueryFilter{})
	if total != 6 {
		t.Errorf("total = %d, want 6", total)
	}
}

func TestCreateBatchLarge(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, 1201)

	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1201 {
		t.Fatalf("len = %d, want 1201", len(all))
	}
	for i, todo := range all {
		if todo.APIID != i+1 {
			t.Fatalf("all[%d].APIID = %d", i, todo.APIID)
		}
	}
}

func TestConcurrentPopulate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	inputs := []todosrepo.CreateTodo{
		{APIID: 1, UserID: 1, Title: "a"},
		{APIID: 2, UserID: 1, Title: "b"},
		{APIID: 3, UserID: 2, Title: "c"},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.CreateBatch(ctx, inputs); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("CreateBatch: %v", err)
	}

	total, _ := repo.Count(ctx, todosrepo.QueryFilter{})
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestCountAndSummary(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sum, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary(empty): %v", err)
	}
	if sum != (todosrepo.Summary{}) {
		t.Errorf("Summary(empty) = %+v", sum)
	}
	if empty, _ := repo.IsEmpty(ctx); !empty {
		t.Error("IsEmpty = false on a new database")
	}

	seed(t, repo, 25)

	sum, err = repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum != (todosrepo.Summary{Total: 25, Completed: 5, Uncompleted: 20}) {
		t.Errorf("Summary = %+v", sum)
	}

	done, open := true, false
	if n, _ := repo.Count(ctx, todosrepo.QueryFilter{Completed: &done}); n != 5 {
		t.Errorf("Count(completed) = %d, want 5", n)
	}
	if n, _ := repo.Count(ctx, todosrepo.QueryFilter{Completed: &open}); n != 20 {
		t.Errorf("Count(open) = %d, want 20", n)
	}

	user := 3
	if n, _ := repo.Count(ctx, todosrepo.QueryFilter{UserID: &user}); n != 5 {
		t.Errorf("Count(user 3) = %d, want 5", n)
	}
}

func TestListPaginates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo, 25)

	first := fop.ParsePageNumber("1", 20).Clamp(25)
	todos, err := repo.List(ctx, todosrepo.QueryFilter{}, todosrepo.DefaultOrderBy, first)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 20 {
		t.Fatalf("page 1 len = %d, want 20", len(todos))
	}
	for i, todo := range todos {
		if todo.APIID != i+1 {
			t.Fatalf("page 1 [%d].APIID = %d", i, todo.APIID)
		}
	}

	second := fop.ParsePageNumber("2", 20).Clamp(25)
	todos, err = repo.List(ctx, todosrepo.QueryFilter{}, todosrepo.DefaultOrderBy, second)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 5 || todos[0].APIID != 21 || todos[4].APIID != 25 {
		t.Fatalf("page 2 = %d items", len(todos))
	}

	desc := fop.NewBy(todosrepo.OrderByAPIID, fop.DESC)
	todos, err = repo.List(ctx, todosrepo.QueryFilter{}, desc, first)
	if err != nil {
		t.Fatalf("List desc: %v", err)
	}
	if todos[0].APIID != 25 {
		t.Errorf("desc first = %d, want 25", todos[0].APIID)
	}

	if _, err := repo.List(ctx, todosrepo.QueryFilter{}, fop.NewBy("title; DROP TABLE todos", fop.ASC), first); err == nil {
		t.Error("expected error for unknown order field")
	}
}

func TestListFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo, 25)

	done := true
	todos, err := repo.List(ctx, todosrepo.QueryFilter{Completed: &done}, todosrepo.DefaultOrderBy, fop.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 5 {
		t.Fatalf("len = %d, want 5", len(todos))
	}
	for _, todo := range todos {
		if !todo.Completed {
			t.Errorf("todo %d is not completed", todo.APIID)
		}
	}
}

func TestToggle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	todo, err := repo.Create(ctx, todosrepo.CreateTodo{APIID: 1, UserID: 1, Title: "flip me"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	on, err := repo.Toggle(ctx, todo.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !on.Completed {
		t.Error("first toggle did not complete the todo")
	}
	if on.UpdatedAt.Before(todo.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v < %v", on.UpdatedAt, todo.UpdatedAt)
	}
	if !on.CreatedAt.Equal(todo.CreatedAt) {
		t.Errorf("CreatedAt changed: %v", on.CreatedAt)
	}

	off, err := repo.Toggle(ctx, todo.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if off.Completed {
		t.Error("second toggle did not reopen the todo")
	}

	if _, err := repo.Toggle(ctx, uuid.New()); !errors.Is(err, todosrepo.ErrNotFound) {
		t.Errorf("Toggle(unknown) err = %v, want ErrNotFound", err)
	}
}

func TestPing(t *testing.T) {
	if err := newTestRepository(t).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
