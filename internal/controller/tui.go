package controller

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PSE-TRIAGE/triage/internal/review"
)

// TUI implements UI with an interactive Bubble Tea review screen.
// One-shot listings are printed the same way SimpleUI prints them.
type TUI struct {
	*SimpleUI

	cmd *cobra.Command
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command, simple *SimpleUI) *TUI {
	return &TUI{SimpleUI: simple, cmd: cmd}
}

// Review runs the interactive review screen until the user quits.
func (t *TUI) Review(ctx context.Context, reviewer review.Reviewer, options ...ReviewOption) error {
	if reviewer.Store().Snapshot().ProjectID == 0 {
		return review.ErrNoProject
	}

	model := newReviewModel(ctx, reviewer, newReviewConfig(options))

	out := t.cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.resize(width, height)
		}
	}

	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("run review screen: %w", err)
	}

	return nil
}
