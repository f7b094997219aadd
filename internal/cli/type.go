package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage content types (bundles)",
	}

	var listJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List content types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(listJSON, err)
			}
			defer s.Close()

			types, err := s.content.ListTypes(cmd.Context())
			if err != nil {
				return commandError(listJSON, err)
			}
			if listJSON {
				return writeJSON(types)
			}
			for _, t := range types {
				fmt.Printf("%s\t%s\n", t.Type, t.Name)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&listJSON, "json", false, "Output JSON")

	var (
		name    string
		addJSON bool
	)
	add := &cobra.Command{
		Use:   "add <type>",
		Short: "Add a content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(addJSON, err)
			}
			defer s.Close()

			t, err := s.content.AddType(cmd.Context(), args[0], name)
			if err != nil {
				return commandError(addJSON, err)
			}
			if addJSON {
				return writeJSON(t)
			}
			fmt.Printf("Content type %s added.\n", t.Type)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Human-readable name")
	add.Flags().BoolVar(&addJSON, "json", false, "Output JSON")

	cmd.AddCommand(list, add)
	return cmd
}
