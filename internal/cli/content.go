package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robertguss/viewfield/internal/content"
	"github.com/robertguss/viewfield/internal/viewfield"
)

func parseContentID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: content id %q must be a positive integer", errInvalidFlag, s)
	}
	return id, nil
}

func parseFieldAssignments(raw []string) (map[string]viewfield.Value, error) {
	out := map[string]viewfield.Value{}
	for _, s := range raw {
		name, v, err := parseFieldAssignment(s)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func printItem(item content.Item) {
	state := "published"
	if !item.Published {
		state = "unpublished"
	}
	fmt.Printf("#%d %s [%s, %s]\n", item.ID, item.Title, item.Type, state)
	for _, name := range sortedKeys(item.Fields) {
		fmt.Printf("  %s: %s\n", name, item.Fields[name])
	}
}

func newContentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Create, edit and render content items",
	}
	cmd.AddCommand(newContentCreateCommand(app))
	cmd.AddCommand(newContentUpdateCommand(app))
	cmd.AddCommand(newContentShowCommand(app))
	cmd.AddCommand(newContentListCommand(app))
	cmd.AddCommand(newContentDeleteCommand(app))
	cmd.AddCommand(newContentRenderCommand(app))
	cmd.AddCommand(newContentDefaultsCommand(app))
	return cmd
}

func newContentCreateCommand(app *App) *cobra.Command {
	var (
		fields    []string
		authorID  int64
		published bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "create <bundle> <title>",
		Short: "Create a content item; unset fields take their defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFieldAssignments(fields)
			if err != nil {
				return commandError(jsonOut, err)
			}

			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			item, err := s.content.Create(cmd.Context(), content.CreateInput{
				Bundle:    args[0],
				Title:     args[1],
				AuthorID:  authorID,
				Published: published,
				Fields:    values,
			})
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(item)
			}
			fmt.Printf("Created #%d %s.\n", item.ID, item.Title)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Field value as name=view|display[:args]; repeatable")
	cmd.Flags().Int64Var(&authorID, "author", 1, "Author account id (0 for none)")
	cmd.Flags().BoolVar(&published, "published", true, "Publish the item")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newContentUpdateCommand(app *App) *cobra.Command {
	var (
		title     string
		fields    []string
		published bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Re-save a content item, overriding the given fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseContentID(args[0])
			if err != nil {
				return commandError(jsonOut, err)
			}
			overrides, err := parseFieldAssignments(fields)
			if err != nil {
				return commandError(jsonOut, err)
			}

			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			current, err := s.content.Get(cmd.Context(), id)
			if err != nil {
				return commandError(jsonOut, err)
			}
			in := content.UpdateInput{Title: current.Title, Published: current.Published, Fields: current.Fields}
			maps.Copy(in.Fields, overrides)
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("published") {
				in.Published = published
			}

			item, err := s.content.Update(cmd.Context(), id, in)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(item)
			}
			fmt.Printf("Updated #%d %s.\n", item.ID, item.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Field value as name=view|display[:args]; 0 clears; repeatable")
	cmd.Flags().BoolVar(&published, "published", true, "Publish the item")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newContentShowCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a content item and its stored references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseContentID(args[0])
			if err != nil {
				return commandError(jsonOut, err)
			}
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			item, err := s.content.Get(cmd.Context(), id)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(item)
			}
			printItem(item)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newContentListCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list [bundle]",
		Short: "List content items, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			bundle := ""
			if len(args) == 1 {
				bundle = args[0]
			}
			items, err := s.content.List(cmd.Context(), bundle)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(items)
			}
			if len(items) == 0 {
				fmt.Println("No content.")
				return nil
			}
			for _, item := range items {
				printItem(item)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newContentDeleteCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseContentID(args[0])
			if err != nil {
				return commandError(jsonOut, err)
			}
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			if err := s.content.Delete(cmd.Context(), id); err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(map[string]any{"deleted": true, "id": id})
			}
			fmt.Printf("Content #%d deleted.\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newContentRenderCommand(app *App) *cobra.Command {
	var (
		htmlOut bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a content item with its referenced views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseContentID(args[0])
			if err != nil {
				return commandError(jsonOut, err)
			}
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			page, err := s.content.Render(cmd.Context(), id)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(page)
			}
			if htmlOut {
				markup, err := page.HTML()
				if err != nil {
					return err
				}
				fmt.Println(markup)
				return nil
			}

			fmt.Printf("#%d %s [%s]\n", page.ID, page.Title, page.Type)
			for _, f := range page.Fields {
				switch {
				case f.Error != "":
					fmt.Printf("  %s: (not rendered: %s)\n", f.Name, f.Error)
				case f.Fragment.IsEmpty():
					fmt.Printf("  %s: (empty)\n", f.Name)
				default:
					fmt.Printf("  %s: %s\n", f.Name, f.Fragment)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&htmlOut, "html", false, "Output the page markup")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newContentDefaultsCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "defaults <bundle>",
		Short: "Show the values a new item of bundle starts with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			defaults, err := s.content.FormDefaults(cmd.Context(), args[0])
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(defaults)
			}
			if len(defaults) == 0 {
				fmt.Println("No defaults.")
				return nil
			}
			for _, name := range sortedKeys(defaults) {
				fmt.Printf("%s: %s\n", name, defaults[name])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func sortedKeys(m map[string]viewfield.Value) []string {
	return slices.Sorted(maps.Keys(m))
}
