// Package commands holds the administrative commands for the todos store.
package commands

import (
	"github.com/jrazmi/todos/core/repositories"
	"github.com/jrazmi/todos/sdk/logger"
	"github.com/spf13/cobra"
)

// App carries what every command needs.
type App struct {
	Prefix string
	Log    *logger.Logger
}

// NewRootCmd builds the tooling command tree. Configuration is read from the
// environment under prefix, the same way the server reads it.
func NewRootCmd(prefix string, log *logger.Logger) *cobra.Command {
	app := &App{Prefix: prefix, Log: log}

	cmd := &cobra.Command{
		Use:           "tooling",
		Short:         "Administer the todos store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newAddCmd(app))

	return cmd
}

func (a *App) openRepositories(cmd *cobra.Command) (*repositories.Repositories, error) {
	return repositories.NewFromEnv(cmd.Context(), a.Prefix, a.Log)
}
