package todoapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrazmi/todos/infrastructure/todoapi"
	"github.com/jrazmi/todos/sdk/logger"
)

const body = `[
	{"userId": 1, "id": 1, "title": "delectus aut autem", "completed": false},
	{"userId": 1, "id": 2, "title": "quis ut nam facilis", "completed": true},
	{"userId": 2, "id": 21, "title": "suscipit repellat", "completed": false}
]`

func testOptions() todoapi.Options {
	opts := todoapi.DefaultOptions()
	opts.Backoff = time.Millisecond
	opts.Timeout = 2 * time.Second
	return opts
}

func newServer(t *testing.T, handler func(attempt int32, w http.ResponseWriter)) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		handler(calls.Add(1), w)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestFetchTodos(t *testing.T) {
	srv, calls := newServer(t, func(_ int32, w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})

	client := todoapi.NewClient(logger.NewDiscard(), testOptions())
	todos, err := client.FetchTodos(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchTodos: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if len(todos) != 3 {
		t.Fatalf("len = %d, want 3", len(todos))
	}

	want := todoapi.Todo{UserID: 2, ID: 21, Title: "suscipit repellat"}
	if todos[2] != want {
		t.Errorf("todos[2] = %+v, want %+v", todos[2], want)
	}
	if !todos[1].Completed {
		t.Error("todos[1].Completed = false")
	}
}

func TestFetchTodosRetriesThenSucceeds(t *testing.T) {
	srv, calls := newServer(t, func(attempt int32, w http.ResponseWriter) {
		if attempt == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(body))
	})

	client := todoapi.NewClient(logger.NewDiscard(), testOptions())
	todos, err := client.FetchTodos(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchTodos: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if len(todos) != 3 {
		t.Errorf("len = %d, want 3", len(todos))
	}
}

func TestFetchTodosNoRetryOnClientError(t *testing.T) {
	srv, calls := newServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
	})

	client := todoapi.NewClient(logger.NewDiscard(), testOptions())
	_, err := client.FetchTodos(context.Background(), srv.URL)
	if !errors.Is(err, todoapi.ErrUnexpectedStatus) {
		t.Fatalf("err = %v, want ErrUnexpectedStatus", err)
	}

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestFetchTodosGivesUp(t *testing.T) {
	srv, calls := newServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := todoapi.NewClient(logger.NewDiscard(), testOptions())
	if _, err := client.FetchTodos(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}

	// The first attempt plus three retries.
	if calls.Load() != 4 {
		t.Errorf("calls = %d, want 4", calls.Load())
	}
}

func TestFetchTodosBadJSON(t *testing.T) {
	srv, _ := newServer(t, func(_ int32, w http.ResponseWriter) {
		w.Write([]byte(`{"not": "an array"}`))
	})

	client := todoapi.NewClient(logger.NewDiscard(), testOptions())
	if _, err := client.FetchTodos(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchTodosCanceled(t *testing.T) {
	srv, _ := newServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := todoapi.NewClient(logger.NewDiscard(), testOptions())
	if _, err := client.FetchTodos(ctx, srv.URL); err == nil {
		t.Fatal("expected error")
	}
}
