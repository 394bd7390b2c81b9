package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

// reviewCmd represents the review command.
var reviewCmd = newReviewCmd()

func newReviewCmd() *cobra.Command {
	var (
		projectID int
		filter    string
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the mutants of a project interactively",
		Long: `Open the review screen for a project: browse mutants, read the mutated
source and fill in the project's review form.

Keys: j/k move, tab switches between list and form, f cycles the filter,
1-5 set a star rating, space toggles a checkbox, enter edits a text or
number answer, s submits, r reloads the list and q quits.

Without a terminal the filtered list is printed instead; use 'triage rate'
to submit answers non-interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := resolveFilter(cmd, filter)
			if err != nil {
				return err
			}

			return workflow.Review(cmd.Context(), domain.ReviewArgs{ProjectID: projectID, Filter: mode})
		},
	}

	addProjectFlag(cmd, &projectID, true)
	addFilterFlag(cmd, &filter)

	return cmd
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
