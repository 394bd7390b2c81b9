package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PSE-TRIAGE/triage/internal/domain"
	"github.com/PSE-TRIAGE/triage/internal/review"
)

func TestLoginCmd_ReadsPasswordFromStdin(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Login", mock.Anything, domain.LoginArgs{Username: "alice", Password: "s3cret"}).Return(nil).Once()

	sub := newLoginCmd()
	sub.SetIn(strings.NewReader("s3cret\n"))

	out, err := executeCommand(t, sub, "login", "--username", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
}

func TestLoginCmd_PromptsForUsername(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Login", mock.Anything, domain.LoginArgs{Username: "bob", Password: "pw"}).Return(nil).Once()

	sub := newLoginCmd()
	sub.SetIn(strings.NewReader(" bob \npw"))

	out, err := executeCommand(t, sub, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
}

func TestLoginCmd_MissingPassword(t *testing.T) {
	useMockWorkflow(t)

	sub := newLoginCmd()
	sub.SetIn(strings.NewReader(""))

	_, err := executeCommand(t, sub, "login", "-u", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read password")
}

func TestNoArgCommands(t *testing.T) {
	tests := []struct {
		name   string
		newCmd func() *cobra.Command
		method string
	}{
		{"logout", newLogoutCmd, "Logout"},
		{"whoami", newWhoamiCmd, "Whoami"},
		{"projects", newProjectsCmd, "Projects"},
		{"algorithms", newAlgorithmsCmd, "Algorithms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWorkflow := useMockWorkflow(t)
			mockWorkflow.On(tt.method, mock.Anything).Return(nil).Once()

			_, err := executeCommand(t, tt.newCmd(), tt.name)
			require.NoError(t, err)
		})
	}
}

func TestNoArgCommands_RejectPositionalArgs(t *testing.T) {
	useMockWorkflow(t)

	_, err := executeCommand(t, newProjectsCmd(), "projects", "extra")
	require.Error(t, err)
}

func TestMutantsCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want domain.ListArgs
	}{
		{
			name: "default filter",
			args: []string{"mutants", "--project", "7"},
			want: domain.ListArgs{ProjectID: 7, Filter: review.FilterUnreviewed},
		},
		{
			name: "explicit filter",
			args: []string{"mutants", "-p", "7", "--filter", "noCoverage"},
			want: domain.ListArgs{ProjectID: 7, Filter: review.FilterNoCoverage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWorkflow := useMockWorkflow(t)
			mockWorkflow.On("Mutants", mock.Anything, tt.want).Return(nil).Once()

			_, err := executeCommand(t, newMutantsCmd(), tt.args...)
			require.NoError(t, err)
		})
	}
}

func TestMutantsCmd_RequiresProject(t *testing.T) {
	useMockWorkflow(t)

	_, err := executeCommand(t, newMutantsCmd(), "mutants")
	require.Error(t, err)
	assert.Contains(t, err.Error(), projectFlagName)
}

func TestMutantsCmd_RejectsUnknownFilter(t *testing.T) {
	useMockWorkflow(t)

	_, err := executeCommand(t, newMutantsCmd(), "mutants", "-p", "7", "--filter", "pending")
	require.Error(t, err)
}

func TestReviewCmd(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Review", mock.Anything, mock.MatchedBy(func(args domain.ReviewArgs) bool {
		return args.ProjectID == 3 && args.Filter == review.FilterSurvived
	})).Return(nil).Once()

	_, err := executeCommand(t, newReviewCmd(), "review", "-p", "3", "-f", "survived")
	require.NoError(t, err)
}

func TestRateCmd(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Rate", mock.Anything, domain.RateArgs{
		ProjectID: 0,
		MutantID:  42,
		Values:    map[int]string{3: "5", 5: "equivalent = yes", 6: ""},
	}).Return(nil).Once()

	_, err := executeCommand(t, newRateCmd(), "rate", "42",
		"--set", "3=4", "--set", "3=5", "--set", "5=equivalent = yes", "--set", "6=")
	require.NoError(t, err)
}

func TestRateCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad mutant id", []string{"rate", "abc"}, "invalid mutant id"},
		{"missing separator", []string{"rate", "1", "--set", "3"}, "expected <field-id>=<value>"},
		{"bad field id", []string{"rate", "1", "--set", "x=1"}, "invalid field id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useMockWorkflow(t)

			_, err := executeCommand(t, newRateCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRankCmd(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Rank", mock.Anything, domain.RankArgs{ProjectID: 2, AlgorithmID: "random"}).Return(nil).Once()

	_, err := executeCommand(t, newRankCmd(), "rank", "random", "--project", "2")
	require.NoError(t, err)
}

func TestFieldsCmd(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Fields", mock.Anything, domain.FieldsArgs{ProjectID: 9}).Return(nil).Once()

	_, err := executeCommand(t, newFieldsCmd(), "fields", "-p", "9")
	require.NoError(t, err)
}
