package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robertguss/viewfield/internal/db"
)

func newResetCommand(app *App) *cobra.Command {
	var (
		force   bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the viewfield database and start fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := db.DBPath(app.Root)

			if _, err := os.Stat(path); os.IsNotExist(err) {
				if jsonOut {
					return writeJSON(map[string]any{"reset": false, "reason": "not initialized"})
				}
				fmt.Println("Nothing to reset: database not initialized.")
				return nil
			}

			if !force {
				if app.NoPrompt || jsonOut || !isInteractiveTTY() {
					return commandError(jsonOut, fmt.Errorf("%w: --force is required when not running interactively", errInvalidFlag))
				}
				ok, err := promptYesNo(fmt.Sprintf("This will delete %s. Continue? [y/N] ", path), false)
				if err != nil {
					return fmt.Errorf("read confirmation: %w", err)
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			for _, p := range []string{path, path + "-wal", path + "-shm"} {
				if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
					return commandError(jsonOut, fmt.Errorf("delete database: %w", err))
				}
			}

			if jsonOut {
				return writeJSON(map[string]any{"reset": true, "path": path})
			}
			fmt.Printf("Database reset. Run `viewfield init` to reinitialize.\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
