package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robertguss/viewfield/internal/db"
	"github.com/robertguss/viewfield/internal/install"
)

func newInitCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize viewfield storage in this directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := db.EnsureDataDir(app.Root); err != nil {
				return commandError(jsonOut, err)
			}

			path := db.DBPath(app.Root)
			conn, err := db.Open(path)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer conn.Close()

			if err := db.RunMigrations(conn); err != nil {
				return commandError(jsonOut, err)
			}
			version, _, err := db.SchemaVersion(conn)
			if err != nil {
				return commandError(jsonOut, err)
			}
			app.logger().Info("migrations applied", zap.String("db_path", path), zap.Uint("schema_version", version))

			if err := db.EnsureGitIgnore(app.Root); err != nil {
				return commandError(jsonOut, err)
			}
			example, written, err := install.WriteExampleCatalog(app.Root)
			if err != nil {
				return commandError(jsonOut, err)
			}

			if jsonOut {
				return writeJSON(map[string]any{
					"ok":              true,
					"root":            app.Root,
					"db_path":         path,
					"schema_version":  version,
					"example_catalog": example,
				})
			}

			fmt.Printf("Initialized viewfield at %s\n", path)
			if written {
				fmt.Printf("Example catalog written to %s; load it with `viewfield view import %s`.\n", example, example)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
