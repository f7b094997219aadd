package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"

	readBuildInfo = debug.ReadBuildInfo
)

type versionPayload struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// buildVersion fills in module version and vcs revision when ldflags left
// the defaults in place.
func buildVersion() versionPayload {
	out := versionPayload{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
	info, ok := readBuildInfo()
	if !ok {
		return out
	}
	if out.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	}
	if out.Commit == "unknown" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				out.Commit = s.Value
			}
		}
	}
	return out
}

func newVersionCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print viewfield version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := buildVersion()
			if jsonOut {
				return writeJSON(v)
			}
			fmt.Printf("viewfield %s (commit %s, %s)\n", v.Version, v.Commit, v.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
