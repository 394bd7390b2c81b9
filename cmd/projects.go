package cmd

import (
	"github.com/spf13/cobra"
)

// projectsCmd represents the projects command.
var projectsCmd = newProjectsCmd()

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List your projects and their review progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Projects(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
