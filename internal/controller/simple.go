package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/internal/review"
)

// SimpleUI implements UI with plain tables written to the command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayCredentials confirms a login.
func (s *SimpleUI) DisplayCredentials(ctx context.Context, creds m.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Logged in as %s (%s)\n", creds.Username, creds.BaseURL)

	return nil
}

// DisplayUser prints the authenticated reviewer.
func (s *SimpleUI) DisplayUser(ctx context.Context, user m.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	role := "reviewer"
	if user.IsAdmin {
		role = "admin"
	}

	s.printf("%s (id %d, %s)\nMutants reviewed: %d\n", user.Username, user.ID, role, user.MutantsReviewed)

	if !user.IsActive {
		s.printf("Account is disabled\n")
	}

	return nil
}

// DisplayProjects prints the project list with review progress.
func (s *SimpleUI) DisplayProjects(ctx context.Context, projects []m.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(projects) == 0 {
		s.printf("No projects assigned.\n")
		return nil
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			p.Name,
			fmt.Sprintf("%d/%d", p.ReviewedMutants, p.TotalMutants),
			fmt.Sprintf("%.0f%%", p.Progress()*100),
			p.CurrentStatus,
		})
	}

	s.printf("%s", renderTable([]string{"ID", "Name", "Reviewed", "Progress", "Status"}, rows, nil))

	return nil
}

// DisplayMutants prints the mutants passing filter.
func (s *SimpleUI) DisplayMutants(ctx context.Context, mutants []m.MutantOverview, filter review.FilterMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := make([][]string, 0, len(mutants))
	for mu := range review.Filtered(mutants, filter) {
		rows = append(rows, mutantRow(mu))
	}

	if len(rows) == 0 {
		s.printf("%s\n", filter.EmptyMessage())
		return nil
	}

	footer := []string{"", "", "", "", "", fmt.Sprintf("%d of %d", len(rows), len(mutants)), ""}
	s.printf("%s", renderTable([]string{"ID", "Status", "File", "Line", "Mutator", "Rank", "Rated"}, rows, footer))

	return nil
}

func mutantRow(mu m.MutantOverview) []string {
	rated := ""
	if mu.Rated {
		rated = "yes"
	}

	return []string{
		strconv.Itoa(mu.ID),
		mu.Status.Label(),
		mu.SourceFile,
		strconv.Itoa(mu.LineNumber),
		mu.Mutator,
		strconv.Itoa(mu.Ranking),
		rated,
	}
}

// DisplayFormFields prints a project's review form.
func (s *SimpleUI) DisplayFormFields(ctx context.Context, fields []m.FormField) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(fields) == 0 {
		s.printf("This project has no review form.\n")
		return nil
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		required := ""
		if f.IsRequired {
			required = "yes"
		}

		rows = append(rows, []string{strconv.Itoa(f.ID), f.Label, string(f.Type), required})
	}

	s.printf("%s", renderTable([]string{"ID", "Label", "Type", "Required"}, rows, nil))

	return nil
}

// DisplayRating prints a stored rating next to its field labels.
func (s *SimpleUI) DisplayRating(ctx context.Context, fields []m.FormField, rating m.Rating) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	labels := make(map[int]string, len(fields))
	for _, f := range fields {
		labels[f.ID] = f.Label
	}

	rows := make([][]string, 0, len(rating.FieldValues))
	for _, fv := range rating.FieldValues {
		label, ok := labels[fv.FormFieldID]
		if !ok {
			label = fmt.Sprintf("field %d", fv.FormFieldID)
		}

		rows = append(rows, []string{label, fv.Value})
	}

	s.printf("Rating %d of mutant %d saved\n", rating.ID, rating.MutantID)
	s.printf("%s", renderTable([]string{"Field", "Value"}, rows, nil))

	return nil
}

// DisplayAlgorithms prints the available ranking algorithms.
func (s *SimpleUI) DisplayAlgorithms(ctx context.Context, algorithms []m.Algorithm) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := make([][]string, 0, len(algorithms))
	for _, a := range algorithms {
		rows = append(rows, []string{a.ID, a.Name, a.Description})
	}

	s.printf("%s", renderTable([]string{"ID", "Name", "Description"}, rows, nil))

	return nil
}

// DisplayAlgorithmResult prints the outcome of a ranking run.
func (s *SimpleUI) DisplayAlgorithmResult(ctx context.Context, result m.AlgorithmResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !result.Success {
		s.printf("Ranking with %s failed: %s\n", result.AlgorithmName, result.Message)
		return nil
	}

	s.printf("Ranked %d mutants with %s\n", result.MutantsRanked, result.AlgorithmName)

	if result.Message != "" {
		s.printf("%s\n", result.Message)
	}

	return nil
}

// DisplayMessage prints a single line.
func (s *SimpleUI) DisplayMessage(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", message)
}

// Review prints the active project's list. Interactive review needs a terminal.
func (s *SimpleUI) Review(ctx context.Context, reviewer review.Reviewer, options ...ReviewOption) error {
	cfg := newReviewConfig(options)
	state := reviewer.Store().Snapshot()

	if err := s.DisplayMutants(ctx, state.Mutants, cfg.filter); err != nil {
		return err
	}

	s.printf("Interactive review needs a terminal; rate mutants with 'triage rate <mutant-id>'.\n")

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderTable(header []string, rows [][]string, footer []string) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)

	if footer != nil {
		table.SetFooter(footer)
	}

	table.Render()

	return tableBuffer.String()
}
