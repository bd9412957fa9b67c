// Package seedcase populates the todo store from the external source.
package seedcase

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"

	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/infrastructure/todoapi"
	"github.com/jrazmi/todos/sdk/logger"
)

// ErrSourceNotConfigured is returned when no source URL was provided.
var ErrSourceNotConfigured = errors.New("todo source url not configured")

// Number of avatar images a user can be assigned.
const imageCount = 7

// Fetcher retrieves raw todos from a source URL.
type Fetcher interface {
	FetchTodos(ctx context.Context, url string) ([]todoapi.Todo, error)
}

// Case runs the fetch-and-store routine.
type Case struct {
	log       *logger.Logger
	repo      *todosrepo.Repository
	fetcher   Fetcher
	sourceURL string
	pickImage func() int
}

// Option configures a Case.
type Option func(*Case)

// WithImagePicker replaces the random image draw, which must return a value
// in [1, 7].
func WithImagePicker(fn func() int) Option {
	return func(c *Case) {
		c.pickImage = fn
	}
}

// NewCase creates the routine for sourceURL.
func NewCase(log *logger.Logger, repo *todosrepo.Repository, fetcher Fetcher, sourceURL string, opts ...Option) *Case {
	c := &Case{
		log:       log,
		repo:      repo,
		fetcher:   fetcher,
		sourceURL: sourceURL,
		pickImage: func() int { return rand.IntN(imageCount) + 1 },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Populate fetches the source, stores every item in one batch and returns all
// stored todos ordered by api_id. Fetch, decode and insert failures are logged
// and reported as an empty result; only a missing source URL is an error.
func (c *Case) Populate(ctx context.Context) ([]todosrepo.Todo, error) {
	if c.sourceURL == "" {
		return nil, ErrSourceNotConfigured
	}

	items, err := c.fetcher.FetchTodos(ctx, c.sourceURL)
	if err != nil {
		c.log.ErrorContext(ctx, "populate", "status", "fetch failed", "url", c.sourceURL, "err", err)
		return nil, nil
	}

	if len(items) == 0 {
		c.log.InfoContext(ctx, "populate", "status", "source returned no todos", "url", c.sourceURL)
		return nil, nil
	}

	inputs := c.Build(items)

	inserted, err := c.repo.CreateBatch(ctx, inputs)
	if err != nil {
		c.log.ErrorContext(ctx, "populate", "status", "insert failed", "err", err)
		return nil, nil
	}

	todos, err := c.repo.ListAll(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "populate", "status", "reload failed", "err", err)
		return nil, nil
	}

	c.log.InfoContext(ctx, "populate", "status", "complete", "fetched", len(items), "inserted", inserted)
	return todos, nil
}

// Build maps source items to inserts. Every item of one user shares the image
// drawn for that user's first item.
func (c *Case) Build(items []todoapi.Todo) []todosrepo.CreateTodo {
	images := make(map[int]string)
	inputs := make([]todosrepo.CreateTodo, 0, len(items))

	for _, item := range items {
		image, ok := images[item.UserID]
		if !ok {
			image = strconv.Itoa(c.pickImage())
			images[item.UserID] = image
		}

		inputs = append(inputs, todosrepo.CreateTodo{
			APIID:     item.ID,
			UserID:    item.UserID,
			Title:     item.Title,
			Image:     image,
			Completed: item.Completed,
		})
	}

	return inputs
}
