package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

// fieldsCmd represents the fields command.
var fieldsCmd = newFieldsCmd()

func newFieldsCmd() *cobra.Command {
	var projectID int

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Show the review form of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Fields(cmd.Context(), domain.FieldsArgs{ProjectID: projectID})
		},
	}

	addProjectFlag(cmd, &projectID, true)

	return cmd
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
