package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

// loginCmd represents the login command.
var loginCmd = newLoginCmd()

func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the review API",
		Long: `Sign in with your reviewer account. The password is read from the terminal
without echo, or from standard input when it is not a terminal. The session
token is stored in the credentials file (auth.credentials_file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())

			if strings.TrimSpace(username) == "" {
				cmd.Print("Username: ")

				line, err := readLine(in)
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}

				username = line
			}

			password, err := readPassword(cmd, in)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			return workflow.Login(cmd.Context(), domain.LoginArgs{Username: strings.TrimSpace(username), Password: password})
		},
	}

	cmd.Flags().StringVarP(&username, usernameFlagName, "u", "", "account name (prompted when omitted)")

	return cmd
}

func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	cmd.Print("Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()

		return string(secret), err
	}

	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
