package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robertguss/viewfield/internal/field"
	"github.com/robertguss/viewfield/internal/viewfield"
)

// parseReference reads "view|display[:args]" as typed on the command line.
func parseReference(s string) (viewfield.Value, error) {
	sel, args, _ := strings.Cut(s, ":")
	v, err := viewfield.ParseSelection(sel)
	if err != nil {
		return viewfield.Value{}, fmt.Errorf("%w: %w", errInvalidFlag, err)
	}
	if v.IsEmpty() {
		return v, nil
	}
	v.Arguments = viewfield.ParseArguments(args)
	return v, nil
}

// parseFieldAssignment reads a --field flag: name=view|display[:args].
func parseFieldAssignment(s string) (string, viewfield.Value, error) {
	name, ref, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", viewfield.Value{}, fmt.Errorf("%w: --field %q must look like name=view|display[:args]", errInvalidFlag, s)
	}
	v, err := parseReference(ref)
	if err != nil {
		return "", viewfield.Value{}, err
	}
	return name, v, nil
}

func printFieldConfig(c field.Config) {
	fmt.Printf("%s.%s (%s)\n", c.Bundle, c.FieldName, c.Label)
	def := "(none)"
	if c.Settings.DefaultValue != nil {
		def = c.Settings.DefaultValue.String()
	}
	fmt.Printf("  default: %s\n", def)
	fmt.Printf("  always use default: %t | allow empty: %t\n", c.Settings.ForceDefault, c.Settings.AllowEmpty)
}

func newFieldCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Configure view reference fields on content types",
	}
	cmd.AddCommand(newFieldConfigureCommand(app))
	cmd.AddCommand(newFieldShowCommand(app))
	cmd.AddCommand(newFieldListCommand(app))
	cmd.AddCommand(newFieldRemoveCommand(app))
	return cmd
}

func newFieldConfigureCommand(app *App) *cobra.Command {
	var (
		label        string
		defaultSel   string
		defaultArgs  string
		forceDefault bool
		required     bool
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "configure <bundle> <field>",
		Short: "Create or replace a view reference field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := viewfield.Settings{ForceDefault: forceDefault, AllowEmpty: !required}
			if defaultSel != "" {
				def, err := parseReference(defaultSel)
				if err != nil {
					return commandError(jsonOut, err)
				}
				if defaultArgs != "" {
					def.Arguments = viewfield.ParseArguments(defaultArgs)
				}
				settings.DefaultValue = &def
			}

			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			c, err := s.fields.Configure(cmd.Context(), field.Input{
				Bundle:    args[0],
				FieldName: args[1],
				Label:     label,
				Settings:  settings,
			})
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(c)
			}
			fmt.Printf("Saved %s.%s.\n", c.Bundle, c.FieldName)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Field label")
	cmd.Flags().StringVar(&defaultSel, "default", "", "Default value as view|display[:args]; 0 clears it")
	cmd.Flags().StringVar(&defaultArgs, "default-args", "", "Default arguments separated by / or ,")
	cmd.Flags().BoolVar(&forceDefault, "force-default", false, "Always use the default value")
	cmd.Flags().BoolVar(&required, "required", false, "Reject items that leave the field empty")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newFieldShowCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <bundle> <field>",
		Short: "Show one field configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			c, err := s.fields.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(c)
			}
			printFieldConfig(c)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newFieldListCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list [bundle]",
		Short: "List field configurations",
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
			configs, err := s.fields.List(cmd.Context(), bundle)
			if err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(configs)
			}
			if len(configs) == 0 {
				fmt.Println("No fields configured.")
				return nil
			}
			for _, c := range configs {
				printFieldConfig(c)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newFieldRemoveCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "remove <bundle> <field>",
		Short: "Remove a field and every value stored for it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSite(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer s.Close()

			if err := s.fields.Remove(cmd.Context(), args[0], args[1]); err != nil {
				return commandError(jsonOut, err)
			}
			if jsonOut {
				return writeJSON(map[string]any{"removed": true, "bundle": args[0], "field": args[1]})
			}
			fmt.Printf("Field %s.%s removed.\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
