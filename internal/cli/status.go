package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robertguss/viewfield/internal/db"
)

type statusPayload struct {
	Initialized   bool         `json:"initialized"`
	SchemaVersion uint         `json:"schema_version"`
	Counts        statusCounts `json:"counts"`
}

type statusCounts struct {
	Views        int `json:"views"`
	Displays     int `json:"displays"`
	Accounts     int `json:"accounts"`
	ContentTypes int `json:"content_types"`
	Fields       int `json:"fields"`
	Content      int `json:"content"`
	FieldValues  int `json:"field_values"`
}

func newStatusCommand(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Quick health check for viewfield state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openExistingDB(app)
			if err != nil {
				return commandError(jsonOut, err)
			}
			defer conn.Close()

			var payload statusPayload
			payload.Initialized = true

			version, _, err := db.SchemaVersion(conn)
			if err != nil {
				return commandError(jsonOut, err)
			}
			payload.SchemaVersion = version

			ctx := cmd.Context()
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM views").Scan(&payload.Counts.Views)
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM view_displays").Scan(&payload.Counts.Displays)
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&payload.Counts.Accounts)
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_types").Scan(&payload.Counts.ContentTypes)
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM field_configs").Scan(&payload.Counts.Fields)
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM content").Scan(&payload.Counts.Content)
			_ = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_field_values").Scan(&payload.Counts.FieldValues)

			if jsonOut {
				return writeJSON(payload)
			}

			fmt.Printf("Initialized: yes (schema %d)\n", payload.SchemaVersion)
			fmt.Printf("Views: %d | Displays: %d | Accounts: %d\n",
				payload.Counts.Views, payload.Counts.Displays, payload.Counts.Accounts)
			fmt.Printf("Content types: %d | Fields: %d | Content: %d (%d field values)\n",
				payload.Counts.ContentTypes, payload.Counts.Fields, payload.Counts.Content, payload.Counts.FieldValues)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
