package cmd

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const unknownVersion = "unknown"

// buildVersion is what `triage version` reports about the running binary.
type buildVersion struct {
	Version   string
	Commit    string
	BuiltAt   string
	Modified  bool
	GoVersion string
}

func readBuildVersion(info *debug.BuildInfo, ok bool) buildVersion {
	v := buildVersion{Version: unknownVersion, Commit: unknownVersion, BuiltAt: unknownVersion, GoVersion: unknownVersion}
	if !ok || info == nil {
		return v
	}

	if info.Main.Version != "" {
		v.Version = info.Main.Version
	}

	if info.GoVersion != "" {
		v.GoVersion = info.GoVersion
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value[:min(len(s.Value), 12)]
		case "vcs.time":
			v.BuiltAt = s.Value
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}

	return v
}

func (v buildVersion) write(w io.Writer, apiURL string) {
	commit := v.Commit
	if v.Modified {
		commit += " (modified)"
	}

	fmt.Fprintf(w, "triage version\t %s\n", v.Version)
	fmt.Fprintf(w, "commit\t\t %s\n", commit)
	fmt.Fprintf(w, "built\t\t %s\n", v.BuiltAt)
	fmt.Fprintf(w, "go version\t %s\n", v.GoVersion)
	fmt.Fprintf(w, "review api\t %s\n", apiURL)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the triage release with the commit and time it was built from, the Go toolchain used, and the review API base URL in effect.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			readBuildVersion(debug.ReadBuildInfo()).write(cmd.OutOrStdout(), viper.GetString(apiBaseURLKey))
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
