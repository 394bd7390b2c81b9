package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

// mutantsCmd represents the mutants command.
var mutantsCmd = newMutantsCmd()

func newMutantsCmd() *cobra.Command {
	var (
		projectID int
		filter    string
	)

	cmd := &cobra.Command{
		Use:   "mutants",
		Short: "List the mutants of a project",
		Long: `List the mutants of a project in ranking order. The list is narrowed with
--filter; the default comes from review.filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := resolveFilter(cmd, filter)
			if err != nil {
				return err
			}

			return workflow.Mutants(cmd.Context(), domain.ListArgs{ProjectID: projectID, Filter: mode})
		},
	}

	addProjectFlag(cmd, &projectID, true)
	addFilterFlag(cmd, &filter)

	return cmd
}

func init() {
	rootCmd.AddCommand(mutantsCmd)
}
