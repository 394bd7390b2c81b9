package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

// rankCmd represents the rank command.
var rankCmd = newRankCmd()

func newRankCmd() *cobra.Command {
	var projectID int

	cmd := &cobra.Command{
		Use:   "rank <algorithm-id>",
		Short: "Re-rank a project's mutants with a ranking algorithm",
		Long:  "Apply a ranking algorithm (see 'triage algorithms') to a project and show the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Rank(cmd.Context(), domain.RankArgs{
				ProjectID:   projectID,
				AlgorithmID: strings.TrimSpace(args[0]),
			})
		},
	}

	addProjectFlag(cmd, &projectID, true)

	return cmd
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
