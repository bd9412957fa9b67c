package commands

import (
	"fmt"

	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var input todosrepo.CreateTodo

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Store a single todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Title = args[0]

			repos, err := app.openRepositories(cmd)
			if err != nil {
				return err
			}
			defer repos.Close()

			todo, err := repos.Todo.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", todo.ID, todo)
			return nil
		},
	}

	cmd.Flags().IntVar(&input.APIID, "api-id", 0, "External id (must be unique)")
	cmd.Flags().IntVar(&input.UserID, "user-id", 0, "Owning user id")
	cmd.Flags().StringVar(&input.Image, "image", "1", "Avatar image bucket, 1-7")
	cmd.Flags().BoolVar(&input.Completed, "completed", false, "Store as already completed")
	cmd.MarkFlagRequired("api-id")

	return cmd
}
