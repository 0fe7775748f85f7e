// Package menu provides the Bubble Tea settings menu.
package menu

import (
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetest/internal/config"
	"github.com/verte-zerg/typetest/internal/model"
)

const step = 5

type item int

const (
	itemMode item = iota
	itemWords
	itemTime
	itemDifficulty
	itemLang
	itemLayout
	itemRestart
	itemFocusWeak
	itemCount
)

var itemLabels = [itemCount]string{
	"Game Mode",
	"Test Length (Words)",
	"Time Limit (Seconds)",
	"Difficulty",
	"Language",
	"Layout Theme",
	"Restart Key",
	"Focus Weak Chars",
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0D468"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	menuBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4A4A4A")).Padding(1, 2)
	selectedStyle = labelStyle.Foreground(lipgloss.Color("#F0F0F0"))
)

// SaveFunc persists settings.
type SaveFunc func(model.Settings) error

// Model implements the Bubble Tea settings menu.
type Model struct {
	settings model.Settings
	langs    []string
	save     SaveFunc

	cursor    item
	status    string
	statusErr bool

	width  int
	height int
}

// NewModel builds a menu over settings. langs lists the selectable languages.
func NewModel(settings model.Settings, langs []string, save SaveFunc) *Model {
	if len(langs) == 0 {
		langs = []string{settings.Lang}
	}
	return &Model{
		settings: settings,
		langs:    langs,
		save:     save,
	}
}

// Settings returns the edited settings.
func (m *Model) Settings() model.Settings {
	return m.settings
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.cursor = (m.cursor + itemCount - 1) % itemCount
		case "down", "j":
			m.cursor = (m.cursor + 1) % itemCount
		case "left", "h":
			m.change(-1)
		case "right", "l":
			m.change(1)
		case "enter":
			m.persist()
		}
	}
	return m, nil
}

func (m *Model) change(dir int) {
	s := &m.settings
	switch m.cursor {
	case itemMode:
		if s.Mode == model.ModeWords {
			s.Mode = model.ModeTime
		} else {
			s.Mode = model.ModeWords
		}
	case itemWords:
		s.Words = max(s.Words+dir*step, config.MinWords)
	case itemTime:
		s.TimeLimit = max(s.TimeLimit+dir*step, config.MinTimeLimit)
	case itemDifficulty:
		s.Difficulty = model.Difficulties[cycle(indexOf(model.Difficulties, s.Difficulty), dir, len(model.Difficulties))]
	case itemLang:
		s.Lang = m.langs[cycle(indexOf(m.langs, s.Lang), dir, len(m.langs))]
	case itemLayout:
		if s.Layout == model.LayoutBoxes {
			s.Layout = model.LayoutDefault
		} else {
			s.Layout = model.LayoutBoxes
		}
	case itemRestart:
		s.RestartKey = !s.RestartKey
	case itemFocusWeak:
		s.FocusWeak = !s.FocusWeak
	}
	m.status = ""
}

func (m *Model) persist() {
	if m.save == nil {
		return
	}
	if err := m.save(m.settings); err != nil {
		log.Printf("save settings: %v", err)
		m.status = fmt.Sprintf("Error saving config: %v", err)
		m.statusErr = true
		return
	}
	m.status = "Config saved."
	m.statusErr = false
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{titleStyle.Render("Settings"), ""}
	for i := item(0); i < itemCount; i++ {
		label := fmt.Sprintf("%-22s %s", itemLabels[i], m.value(i))
		if i == m.cursor {
			lines = append(lines, cursorStyle.Render("> ")+selectedStyle.Render(label))
		} else {
			lines = append(lines, "  "+labelStyle.Render(label))
		}
	}
	lines = append(lines, "")
	if m.status != "" {
		if m.statusErr {
			lines = append(lines, errStyle.Render(m.status))
		} else {
			lines = append(lines, okStyle.Render(m.status))
		}
	}
	lines = append(lines, helpStyle.Render("up/down: select  left/right: change  enter: save  q: quit"))
	content := menuBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) value(i item) string {
	s := m.settings
	switch i {
	case itemMode:
		return string(s.Mode)
	case itemWords:
		return fmt.Sprintf("%d words", s.Words)
	case itemTime:
		return fmt.Sprintf("%d seconds", s.TimeLimit)
	case itemDifficulty:
		return string(s.Difficulty)
	case itemLang:
		return s.Lang
	case itemLayout:
		return string(s.Layout)
	case itemRestart:
		return onOff(s.RestartKey)
	case itemFocusWeak:
		return onOff(s.FocusWeak)
	default:
		return ""
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// cycle steps from idx in dir, wrapping around n entries. An unknown index starts at the first entry.
func cycle(idx, dir, n int) int {
	if idx < 0 {
		return 0
	}
	return ((idx+dir)%n + n) % n
}
