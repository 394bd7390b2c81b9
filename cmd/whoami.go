package cmd

import (
	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command.
var whoamiCmd = newWhoamiCmd()

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in reviewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Whoami(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
