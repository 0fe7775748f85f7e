package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/session"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func newStyledRune(r rune, style lipgloss.Style) styledRune {
	return styledRune{
		s:       style.Render(string(r)),
		width:   runewidth.RuneWidth(r),
		isSpace: r == ' ',
	}
}

// buildStyledRunes lays out the snapshot words separated by spaces. The cursor
// underlines the next target rune, or the space after the word once the word
// has been typed to its end.
func buildStyledRunes(snap session.Snapshot, st styles) []styledRune {
	out := make([]styledRune, 0, len(snap.Words)*6)
	active := snap.Phase == session.NotStarted || snap.Phase == session.Running
	cursorNext := false
	for wi, w := range snap.Words {
		if wi > 0 {
			sep := st.pending
			if cursorNext {
				sep = sep.Underline(true)
				cursorNext = false
			}
			out = append(out, newStyledRune(' ', sep))
		}
		current := active && w.Index == snap.WordIndex
		for i, r := range []rune(w.Target) {
			style := st.pending
			switch w.Status[i] {
			case session.Correct:
				style = st.correct
			case session.Incorrect:
				style = st.incorrect
			default:
				if current {
					style = st.current
				}
			}
			if current && i == snap.CharIndex {
				style = style.Underline(true)
			}
			out = append(out, newStyledRune(r, style))
		}
		for _, r := range w.Extra {
			out = append(out, newStyledRune(r, st.extra))
		}
		cursorNext = current && snap.CharIndex >= len(w.Status)
	}
	if cursorNext {
		out = append(out, newStyledRune(' ', st.pending.Underline(true)))
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at spaces so no line exceeds width columns.
// Words longer than a line are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var lines []string
	var line []styledRune
	lineWidth := 0
	lastSpace := -1
	for _, item := range runes {
		// A space may hang past the edge; the next rune breaks the line there.
		for lineWidth+item.width > width && len(line) > 0 && !item.isSpace {
			if lastSpace < 0 {
				lines = append(lines, renderStyledRunes(line))
				line, lineWidth = nil, 0
				break
			}
			lines = append(lines, renderStyledRunes(line[:lastSpace]))
			line = append([]styledRune(nil), line[lastSpace+1:]...)
			lineWidth, lastSpace = 0, -1
			for i, r := range line {
				lineWidth += r.width
				if r.isSpace {
					lastSpace = i
				}
			}
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
	}
	lines = append(lines, renderStyledRunes(line))
	return strings.Join(lines, "\n")
}
