package commands

import (
	"fmt"

	"github.com/jrazmi/todos/core/cases/seedcase"
	"github.com/jrazmi/todos/infrastructure/todoapi"
	"github.com/jrazmi/todos/sdk/environment"
	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fetch todos from the external source and store the new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := app.openRepositories(cmd)
			if err != nil {
				return err
			}
			defer repos.Close()

			client, err := todoapi.NewFromEnv(app.Prefix, app.Log)
			if err != nil {
				return fmt.Errorf("configuring todo api client: %w", err)
			}

			todos, err := seedcase.NewCase(app.Log, repos.Todo, client, url).Populate(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d todos stored\n", len(todos))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", environment.GetPrefixEnvOrDefault(app.Prefix, "TODO_API_URL", ""), "Source URL (defaults to TODO_API_URL)")

	return cmd
}
