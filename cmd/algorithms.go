package cmd

import (
	"github.com/spf13/cobra"
)

// algorithmsCmd represents the algorithms command.
var algorithmsCmd = newAlgorithmsCmd()

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the available ranking algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Algorithms(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
