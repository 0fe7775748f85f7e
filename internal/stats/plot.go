package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Series is a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackWidth     = 80
	plotGutter        = " │"
)

var seriesColors = []lipgloss.Color{"#4FC1E9", "#ED5565", "#FFCE54", "#A0D468", "#AC92EC"}

// braille dot bits indexed by [row][column] inside one 2x4 cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// canvas is a grid of braille cells, each holding 2x4 dots.
type canvas struct {
	cells [][]uint8
	owner [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		cells: make([][]uint8, height),
		owner: make([][]int, height),
	}
	for y := range c.cells {
		c.cells[y] = make([]uint8, width)
		c.owner[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

func (c *canvas) set(px, py, series int) {
	cy, cx := py/4, px/2
	if py < 0 || px < 0 || cy >= len(c.cells) || cx >= len(c.cells[cy]) {
		return
	}
	c.cells[cy][cx] |= brailleBits[py%4][px%2]
	if c.owner[cy][cx] < 0 {
		c.owner[cy][cx] = series
	}
}

// column fills the dots between two rows of one pixel column.
func (c *canvas) column(px, from, to, series int) {
	if from > to {
		from, to = to, from
	}
	for py := from; py <= to; py++ {
		c.set(px, py, series)
	}
}

// PlotSeries writes a braille line chart. Each series is scaled to its own
// range, which the legend reports.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, color bool) error {
	out := RenderPlot(title, series, width, height, color)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

// RenderPlot renders a braille line chart to a string. Width and height are in
// terminal cells; non-positive values fall back to the terminal size.
func RenderPlot(title string, series []Series, width, height int, color bool) string {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	width = max(width, minPlotWidth)

	c := newCanvas(width, height)
	rows := height * 4
	legend := make([]string, 0, len(kept))
	for i, s := range kept {
		lo, hi := bounds(s.Values)
		prev := -1
		for px, v := range resample(s.Values, width*2) {
			py := int(math.Round((hi - v) / (hi - lo) * float64(rows-1)))
			py = min(max(py, 0), rows-1)
			if prev < 0 {
				c.set(px, py, i)
			} else {
				c.column(px, prev, py, i)
			}
			prev = py
		}
		entry := fmt.Sprintf("%c %s %.2f..%.2f", rune(0x2800+0xFF), s.Name, lo, hi)
		legend = append(legend, paint(entry, i, color))
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for y := range c.cells {
		b.WriteString(plotGutter)
		for x, mask := range c.cells[y] {
			b.WriteString(paint(string(rune(0x2800+int(mask))), c.owner[y][x], color))
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(legend, "  "))
	return b.String()
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-len([]rune(plotGutter))-1, minPlotWidth)
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// ColorEnabled reports whether w is a terminal and NO_COLOR is unset.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func paint(s string, series int, color bool) string {
	if !color || series < 0 {
		return s
	}
	return lipgloss.NewStyle().Foreground(seriesColors[series%len(seriesColors)]).Render(s)
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

// resample stretches or averages values into n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 || n == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	if len(values) > n {
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}
