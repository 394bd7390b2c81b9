package controller

import (
	"github.com/charmbracelet/lipgloss"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

var (
	colorAccent  = lipgloss.Color("#2CD7C7")
	colorBorder  = lipgloss.Color("#16858E")
	colorMuted   = lipgloss.Color("#5C7A84")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
)

// styles groups the lipgloss styles used by the review screen.
var styles = struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Panel    lipgloss.Style
	Focused  lipgloss.Style
	Code     lipgloss.Style
	Mutated  lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Muted:    lipgloss.NewStyle().Foreground(colorMuted),
	Bold:     lipgloss.NewStyle().Bold(true),
	Error:    lipgloss.NewStyle().Foreground(colorError),
	Success:  lipgloss.NewStyle().Foreground(colorSuccess),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Cursor:   lipgloss.NewStyle().Reverse(true),
	Panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1),
	Focused: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1),
	Code:    lipgloss.NewStyle().Foreground(colorMuted),
	Mutated: lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
}

func statusStyle(status m.MutantStatus) lipgloss.Style {
	switch status {
	case m.StatusKilled:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case m.StatusSurvived:
		return lipgloss.NewStyle().Foreground(colorError)
	case m.StatusNoCoverage:
		return lipgloss.NewStyle().Foreground(colorWarning)
	}

	return lipgloss.NewStyle().Foreground(colorMuted)
}
