package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetest/internal/model"
)

type styles struct {
	correct   lipgloss.Style
	incorrect lipgloss.Style
	pending   lipgloss.Style
	current   lipgloss.Style
	extra     lipgloss.Style
	header    lipgloss.Style
	footer    lipgloss.Style
	box       lipgloss.Style
}

func newStyles(theme model.Theme) styles {
	pending := lipgloss.Color(theme.Pending)
	incorrect := lipgloss.Color(theme.Incorrect)
	return styles{
		correct:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Correct)),
		incorrect: lipgloss.NewStyle().Foreground(incorrect),
		pending:   lipgloss.NewStyle().Foreground(pending),
		current:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		extra:     lipgloss.NewStyle().Foreground(incorrect).Strikethrough(true),
		header:    lipgloss.NewStyle().Bold(true),
		footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pending).
			Padding(0, 1),
	}
}
