package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robertguss/viewfield/internal/catalog"
)

func newViewCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage the catalog of views and displays",
	}
	cmd.AddCommand(newViewListCommand(app))
	cmd.AddCommand(newViewShowCommand(app))
	cmd.AddCommand(newViewOptionsCommand(app))
	cmd.AddCommand(newViewAddCommand(app))
	cmd.AddCommand(newViewAddDisplayCommand(app))
	cmd.AddCommand(newViewEnableCommand(app, true))
	cmd.AddCommand(newViewEnableCommand(app, false))
	cmd.AddCommand(newViewRemoveCommand(app))
	cmd.AddCommand(newViewRemoveDisplayCommand(app))
	cmd.AddCommand(newViewImportCommand(app))
	return cmd
}

func newViewListCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List views and their displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			views, err := s.catalog.ListViews(cmd.Context())
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(views)
			}
			if len(views) == 0 {
				fmt.Println("No views.")
				return nil
			}
			for _, v := range views {
				printView(v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func printView(v catalog.View) {
	state := "enabled"
	if !v.Enabled {
		state = "disabled"
	}
	fmt.Printf("%s (%s, base=%s, %s)\n", v.Name, v.Label, v.Base, state)
	for _, d := range v.Displays {
		state := ""
		if !d.Enabled {
			state = " [disabled]"
		}
		fmt.Printf("  %s %s %q max_args=%d items=%d%s\n", d.ID, d.Kind, d.Title, d.MaxArgs, d.ItemsPerPage, state)
	}
}

func newViewShowCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <view>",
		Short: "Show one view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			v, err := s.catalog.GetView(cmd.Context(), args[0])
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(v)
			}
			printView(v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewOptionsCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the view|display pairs a field can reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			options, err := s.catalog.Options(cmd.Context())
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(options)
			}
			for _, o := range options {
				fmt.Printf("%s\t%s\n", o.Value, o.Label)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewAddCommand(app *App) *cobra.Command {
	var (
		label   string
		base    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a view with a default display",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			v, err := s.catalog.AddView(cmd.Context(), catalog.ViewInput{Name: args[0], Label: label, Base: base})
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(v)
			}
			fmt.Printf("View %s added.\n", v.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Human-readable label")
	cmd.Flags().StringVar(&base, "base", catalog.BaseContent, "Base table: content or accounts")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewAddDisplayCommand(app *App) *cobra.Command {
	var (
		in      catalog.DisplayInput
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "add-display <view> <display>",
		Short: "Add a display to a view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			in.View, in.ID = args[0], args[1]
			d, err := s.catalog.AddDisplay(cmd.Context(), in)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(d)
			}
			fmt.Printf("Display %s|%s added.\n", d.ViewName, d.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Kind, "kind", "", "Display kind: page, block or embed")
	cmd.Flags().StringVar(&in.Title, "title", "", "Display title")
	cmd.Flags().IntVar(&in.MaxArgs, "max-args", 1, "Number of arguments the display accepts")
	cmd.Flags().IntVar(&in.ItemsPerPage, "items", 0, "Rows per render (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewEnableCommand(app *App, enabled bool) *cobra.Command {
	var jsonOut bool
	use, verb := "enable", "enabled"
	if !enabled {
		use, verb = "disable", "disabled"
	}

	cmd := &cobra.Command{
		Use:   use + " <view> [display]",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a view or one of its displays",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			target := args[0]
			if len(args) == 2 {
				err = s.catalog.SetDisplayEnabled(cmd.Context(), args[0], args[1], enabled)
				target += "|" + args[1]
			} else {
				err = s.catalog.SetViewEnabled(cmd.Context(), args[0], enabled)
			}
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(map[string]any{"target": target, "enabled": enabled})
			}
			fmt.Printf("%s %s.\n", target, verb)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewRemoveCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "remove <view>",
		Short: "Delete a view; stored references to it stay and render empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			if err := s.catalog.RemoveView(cmd.Context(), args[0]); err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(map[string]any{"removed": true, "view": args[0]})
			}
			fmt.Printf("View %s removed.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewRemoveDisplayCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "remove-display <view> <display>",
		Short: "Delete one display of a view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			if err := s.catalog.RemoveDisplay(cmd.Context(), args[0], args[1]); err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(map[string]any{"removed": true, "view": args[0], "display": args[1]})
			}
			fmt.Printf("Display %s|%s removed.\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newViewImportCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upsert views from a YAML file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			in := os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return commandError(jsonOut, fmt.Errorf("open import file: %w", err))
				}
				defer f.Close()
				in = f
			}

			result, err := s.catalog.Import(cmd.Context(), in)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(result)
			}
			fmt.Printf("Imported %d views (%d displays).\n", result.Views, result.Displays)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
