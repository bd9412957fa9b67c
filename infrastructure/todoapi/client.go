// Package todoapi fetches todo items from the external JSON source.
package todoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jrazmi/todos/sdk/environment"
	"github.com/jrazmi/todos/sdk/logger"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 16 << 20

// ErrUnexpectedStatus is returned for a non-2xx response that is not retried.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Todo is one item as served by the source.
type Todo struct {
	UserID    int    `json:"userId"`
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Options represents the exportable client configuration
type Options struct {
	Retries       int           `env:"TODO_API_RETRIES" default:"3"`
	Backoff       time.Duration `env:"TODO_API_BACKOFF" default:"300ms"`
	Timeout       time.Duration `env:"TODO_API_TIMEOUT" default:"10s"`
	RetryStatuses []int         `env:"TODO_API_RETRY_STATUSES" default:"500,502,503,504"`
}

// DefaultOptions matches the env defaults.
func DefaultOptions() Options {
	return Options{
		Retries:       3,
		Backoff:       300 * time.Millisecond,
		Timeout:       10 * time.Second,
		RetryStatuses: []int{500, 502, 503, 504},
	}
}

// Client performs GETs with bounded exponential backoff: with the defaults a
// request is retried after 0.3s, 0.6s and 1.2s before giving up.
type Client struct {
	log  *logger.Logger
	http *retryablehttp.Client
}

// NewFromEnv creates a client configured from the environment.
func NewFromEnv(prefix string, log *logger.Logger) (*Client, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing todo api config: %w", err)
	}
	return NewClient(log, cfg), nil
}

// NewClient creates a client with the given options.
func NewClient(log *logger.Logger, cfg Options) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.RetryMax = max(cfg.Retries, 0)
	rc.RetryWaitMin = cfg.Backoff
	rc.RetryWaitMax = cfg.Backoff << max(cfg.Retries, 0)
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.CheckRetry = retryPolicy(cfg.RetryStatuses)
	rc.Logger = log.Logger

	return &Client{
		log:  log,
		http: rc,
	}
}

// retryPolicy retries connection errors and the listed statuses only.
func retryPolicy(statuses []int) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}

		return slices.Contains(statuses, resp.StatusCode), nil
	}
}

// FetchTodos GETs url and decodes the body as an array of todos.
func (c *Client) FetchTodos(ctx context.Context, url string) ([]Todo, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	var todos []Todo
	if err := json.Unmarshal(body, &todos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.log.DebugContext(ctx, "todo api", "status", "fetched", "count", len(todos))
	return todos, nil
}
