// Package todosrepobridge contains HTTP route registration for Todo.
package todosrepobridge

import (
	"fmt"

	"github.com/jrazmi/todos/bridge/scaffolding/metrics"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/infrastructure/web"
	"github.com/jrazmi/todos/sdk/logger"
)

// Config holds configuration for the Todo bridge
type Config struct {
	Log        *logger.Logger
	Repository *todosrepo.Repository
	Seeder     Seeder
	Metrics    *metrics.Metrics
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Todo
func AddHttpRoutes(group *web.RouteGroup, cfg Config) error {
	b, err := newBridge(cfg)
	if err != nil {
		return fmt.Errorf("todos bridge: %w", err)
	}

	group.GET("/{$}", b.httpList, cfg.Middleware...)
	group.POST("/toggle-todo/{$}", b.httpToggle, cfg.Middleware...)
	group.GET("/api/todos", b.httpListJSON, cfg.Middleware...)
	group.GET("/healthz", b.httpHealth, cfg.Middleware...)

	return nil
}
