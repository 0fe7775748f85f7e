// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/stats"
)

type view int

const (
	viewTable view = iota
	viewGraph
	viewChars
)

const (
	plotHeight   = 10
	sidebarWidth = 24
	tableLimit   = 50
)

var viewNames = []string{"Table (t)", "Graph (g)", "Chars (c)"}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	sidebarStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			PaddingRight(1)
)

// Source provides the stored results shown by the viewer.
type Source interface {
	stats.Source
	ListKeys(ctx context.Context) ([]model.KeySummary, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src Source
	cfg model.StatsConfig

	keys     []model.KeySummary
	selected int
	view     view
	report   stats.Report
	errMsg   string

	results table.Model
	chars   table.Model
	graph   viewport.Model

	width  int
	height int
}

// NewModel constructs a stats UI model. The key in cfg, when stored, is selected first.
func NewModel(src Source, cfg model.StatsConfig) *Model {
	m := &Model{
		src:     src,
		cfg:     cfg,
		results: newTable(),
		chars:   newTable(),
		graph:   viewport.New(0, 0),
	}
	m.loadKeys()
	m.refreshReport()
	return m
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
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.selectKey(m.selected - 1)
			return m, nil
		case "down", "j":
			m.selectKey(m.selected + 1)
			return m, nil
		case "t":
			m.view = viewTable
			return m, nil
		case "g":
			m.view = viewGraph
			return m, nil
		case "c":
			m.view = viewChars
			return m, nil
		case "=", "+":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		}
		var cmd tea.Cmd
		switch m.view {
		case viewTable:
			m.results, cmd = m.results.Update(msg)
		case viewChars:
			m.chars, cmd = m.chars.Update(msg)
		default:
			m.graph, cmd = m.graph.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Height(bodyHeight).Render(fitLines(m.renderKeys(), sidebarWidth, bodyHeight)),
		fitLines(m.renderBody(), m.bodyWidth(), bodyHeight),
	)
	footer := fitLines(m.renderFooter(), m.width, 1)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) loadKeys() {
	keys, err := m.src.ListKeys(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.keys = keys
	m.selected = 0
	for i, k := range keys {
		if k.Key == m.cfg.Key {
			m.selected = i
		}
	}
	if len(keys) > 0 {
		m.cfg.Key = keys[m.selected].Key
	}
}

func (m *Model) selectKey(idx int) {
	if len(m.keys) == 0 {
		return
	}
	idx = max(0, min(idx, len(m.keys)-1))
	if idx == m.selected {
		return
	}
	m.selected = idx
	m.cfg.Key = m.keys[idx].Key
	m.refreshReport()
}

func (m *Model) refreshReport() {
	if len(m.keys) == 0 {
		m.report = stats.Report{}
		m.setTables()
		return
	}
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.setTables()
}

func (m *Model) setTables() {
	setTableData(&m.results, stats.ResultHeaders, stats.ResultRows(m.report.Results, tableLimit))
	setTableData(&m.chars, stats.CharHeaders, stats.CharRows(m.report.Chars))
	m.renderGraph()
}

func (m *Model) renderGraph() {
	if len(m.report.Results) == 0 {
		m.graph.SetContent("No results found.")
		return
	}
	summary := strings.Join(stats.SummaryLines(m.report.Summary), "  ")
	title := fmt.Sprintf("WPM and accuracy (moving average over %d)", max(m.cfg.CurveWindow, 1))
	plot := stats.RenderPlot(title, stats.CurveSeries(m.report.Results, m.cfg.CurveWindow),
		stats.PlotWidthFor(m.bodyWidth()), plotHeight, true)
	m.graph.SetContent(headerStyle.Render(summary) + "\n\n" + plot)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	bodyHeight = max(m.height-headerHeight-1, 1)
	return headerHeight, bodyHeight
}

func (m *Model) bodyWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(m.width-sidebarWidth-2, 10)
}

func (m *Model) updateLayout() {
	_, bodyHeight := m.layoutHeights()
	width := m.bodyWidth()
	for _, t := range []*table.Model{&m.results, &m.chars} {
		t.SetWidth(width)
		t.SetHeight(max(bodyHeight-1, 1))
	}
	m.graph.Width = width
	m.graph.Height = bodyHeight
	m.renderGraph()
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(viewNames))
	for i, name := range viewNames {
		if view(i) == m.view {
			parts = append(parts, activeNavStyle.Render(name))
		} else {
			parts = append(parts, inactiveNavStyle.Render(name))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	key := "no results"
	if m.cfg.Key != "" {
		key = m.cfg.Key
	}
	line := fmt.Sprintf("Key: %s  window=%d", key, m.cfg.CurveWindow)
	return tabs + "\n" + headerStyle.Render(runewidth.Truncate(line, max(m.width, 1), "..."))
}

func (m *Model) renderKeys() string {
	if len(m.keys) == 0 {
		return headerStyle.Render("No results yet.")
	}
	lines := make([]string, 0, len(m.keys))
	for i, k := range m.keys {
		label := runewidth.Truncate(fmt.Sprintf("%s (%d)", k.Key, k.Count), sidebarWidth-2, "...")
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("> "+label))
		} else {
			lines = append(lines, keyStyle.Render("  "+label))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody() string {
	if m.errMsg != "" {
		return errorStyle.Render("Failed to load stats: " + m.errMsg)
	}
	if len(m.report.Results) == 0 {
		return "No results found."
	}
	switch m.view {
	case viewTable:
		return m.results.View()
	case viewChars:
		if len(m.report.Chars) == 0 {
			return "No character stats found."
		}
		return m.chars.View()
	default:
		return m.graph.View()
	}
}

func (m *Model) renderFooter() string {
	return headerStyle.Render("Keys: up/down  View: t/g/c  Window: -/=  Scroll: pgup/pgdn  Quit: q")
}

func newTable() table.Model {
	t := table.New(table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	t.Focus()
	return t
}

// setTableData sizes each column to its widest cell.
func setTableData(t *table.Model, headers []string, rows [][]string) {
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: runewidth.StringWidth(h)}
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		for c, cell := range row {
			if c < len(cols) {
				cols[c].Width = max(cols[c].Width, runewidth.StringWidth(cell))
			}
		}
		tableRows[i] = table.Row(row)
	}
	// Rows must be cleared before shrinking the column set.
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(tableRows)
	t.GotoTop()
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}
