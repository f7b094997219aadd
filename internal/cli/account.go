package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts listed by account-based views",
	}

	var listJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(listJSON, err)
			}
			defer s.Close()

			accounts, err := s.accounts.List(cmd.Context())
			if err != nil {
				return commandError(listJSON, err)
			}
			if listJSON {
				return writeJSON(accounts)
			}
			for _, a := range accounts {
				state := "active"
				if !a.Active {
					state = "blocked"
				}
				fmt.Printf("#%d %s (%s)\n", a.ID, a.Name, state)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&listJSON, "json", false, "Output JSON")

	var addJSON bool
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(addJSON, err)
			}
			defer s.Close()

			a, err := s.accounts.Add(cmd.Context(), args[0])
			if err != nil {
				return commandError(addJSON, err)
			}
			if addJSON {
				return writeJSON(a)
			}
			fmt.Printf("Account #%d %s added.\n", a.ID, a.Name)
			return nil
		},
	}
	add.Flags().BoolVar(&addJSON, "json", false, "Output JSON")

	cmd.AddCommand(list, add)
	return cmd
}
