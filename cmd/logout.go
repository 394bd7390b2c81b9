package cmd

import (
	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command.
var logoutCmd = newLogoutCmd()

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Logout(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
