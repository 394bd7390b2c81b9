// Package controller renders review data and runs the interactive review session.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/internal/review"
)

// ReviewOption is a functional option for the Review method.
type ReviewOption func(*ReviewConfig)

// ReviewConfig holds the settings of one interactive review session.
type ReviewConfig struct {
	filter review.FilterMode
}

// WithFilter sets the filter the mutant list starts with.
func WithFilter(mode review.FilterMode) ReviewOption {
	return func(c *ReviewConfig) {
		c.filter = mode
	}
}

func newReviewConfig(options []ReviewOption) ReviewConfig {
	cfg := ReviewConfig{filter: review.FilterUnreviewed}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines how review data is presented.
// Implementations can use different output methods (plain tables, interactive TUI).
type UI interface {
	DisplayCredentials(ctx context.Context, creds m.Credentials) error
	DisplayUser(ctx context.Context, user m.User) error
	DisplayProjects(ctx context.Context, projects []m.Project) error
	DisplayMutants(ctx context.Context, mutants []m.MutantOverview, filter review.FilterMode) error
	DisplayFormFields(ctx context.Context, fields []m.FormField) error
	DisplayRating(ctx context.Context, fields []m.FormField, rating m.Rating) error
	DisplayAlgorithms(ctx context.Context, algorithms []m.Algorithm) error
	DisplayAlgorithmResult(ctx context.Context, result m.AlgorithmResult) error
	DisplayMessage(ctx context.Context, message string)
	// Review runs a review session on the reviewer's active project until the user quits.
	Review(ctx context.Context, reviewer review.Reviewer, options ...ReviewOption) error
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// NewUI returns a TUI when interactive and a SimpleUI otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	simple := NewSimpleUI(cmd)
	if !interactive {
		return simple
	}

	return NewTUI(cmd, simple)
}
