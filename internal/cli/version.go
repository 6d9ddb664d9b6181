package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// VersionInfo is stamped into the binary at build time.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// withDefaults fills unset fields for development builds.
func (v VersionInfo) withDefaults() VersionInfo {
	if v.Version == "" {
		v.Version = "dev"
	}
	if v.Commit == "" {
		v.Commit = "unknown"
	}
	if v.Date == "" {
		v.Date = "unknown"
	}
	return v
}

func (v VersionInfo) write(w io.Writer) {
	v = v.withDefaults()
	fmt.Fprintf(w, "hodor version %s\n", v.Version)
	fmt.Fprintf(w, "commit: %s\n", v.Commit)
	fmt.Fprintf(w, "built: %s\n", v.Date)
}

// NewVersionCmd creates the version command
func NewVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.versionInfo.write(cmd.OutOrStdout())
			return nil
		},
	}
}
