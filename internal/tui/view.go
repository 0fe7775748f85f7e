package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/session"
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.screen == screenResults {
		content = m.renderResults()
	} else {
		content = m.renderTyping(m.sess.Snapshot())
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderTyping(snap session.Snapshot) string {
	width := m.contentWidth()
	header := headerText(snap)
	runes := buildStyledRunes(snap, m.styles)

	if m.settings.Layout == model.LayoutBoxes {
		box := m.styles.box
		textWidth := 0
		if width > 0 {
			// Border and padding take two columns on each side.
			box = box.Width(max(width-2, 1))
			textWidth = max(width-4, 1)
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			box.Render(m.styles.header.Render(header)),
			box.Render(wrapStyledRunes(runes, textWidth)),
		)
	}

	text := wrapStyledRunes(runes, width)
	if width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.styles.header.Render(header), "", text)
}

func headerText(snap session.Snapshot) string {
	var progress string
	if snap.Mode == model.ModeTime {
		progress = fmt.Sprintf("%ds", int(math.Ceil(snap.Remaining.Seconds())))
	} else {
		progress = fmt.Sprintf("%d/%d", min(snap.WordIndex, snap.WordCount), snap.WordCount)
	}
	if snap.Phase == session.Running {
		return fmt.Sprintf("%s · %.0f WPM", progress, snap.WPM)
	}
	return progress
}

func (m *Model) renderResults() string {
	if m.result == nil {
		return ""
	}
	r := m.result
	lines := []string{
		m.styles.header.Render("Test complete: " + r.Key()),
		"",
		fmt.Sprintf("WPM        %.2f", r.WPM),
		fmt.Sprintf("Accuracy   %.2f%%", r.Accuracy),
		fmt.Sprintf("Correct    %d", r.Correct),
		fmt.Sprintf("Incorrect  %d", r.Incorrect),
		fmt.Sprintf("Keystrokes %d", r.Keystrokes),
		fmt.Sprintf("Time       %.1fs", r.Elapsed.Seconds()),
	}
	if !m.saved && m.store != nil {
		lines = append(lines, "", m.styles.incorrect.Render("Result was not saved."))
	}
	lines = append(lines, "", m.styles.footer.Render("tab new test · esc quit"))
	content := strings.Join(lines, "\n")
	if m.settings.Layout == model.LayoutBoxes {
		return m.styles.box.Render(content)
	}
	return content
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasSummary {
		segments = append(segments,
			fmt.Sprintf("Last %.1f WPM · %.1f%%", m.summary.LastWPM, m.summary.LastAccuracy),
			fmt.Sprintf("Best %.1f WPM", m.summary.BestWPM),
		)
	}
	if m.screen == screenTyping {
		hints := "esc quit"
		if m.settings.RestartKey {
			hints = "tab restart · " + hints
		}
		segments = append(segments, hints)
	}
	if len(segments) == 0 {
		return ""
	}
	return m.styles.footer.Render(strings.Join(segments, "  "))
}
