// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/typetest/internal/model"
)

// Summary aggregates a list of results.
type Summary struct {
	Count       int
	AvgWPM      float64
	BestWPM     float64
	LastWPM     float64
	AvgAccuracy float64
}

// Summarize computes averages over results, which are expected oldest first.
func Summarize(results []model.Result) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	var s Summary
	var wpmSum, accSum float64
	for _, r := range results {
		wpmSum += r.WPM
		accSum += r.Accuracy
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
	}
	s.Count = len(results)
	s.AvgWPM = wpmSum / float64(s.Count)
	s.AvgAccuracy = accSum / float64(s.Count)
	s.LastWPM = results[len(results)-1].WPM
	return s
}

// MovingAverage computes a trailing mean over the provided window size.
// The first values average over fewer points.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if n > window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// CurveSeries returns smoothed WPM and accuracy series for results.
func CurveSeries(results []model.Result, window int) []Series {
	wpms := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = r.WPM
		accs[i] = r.Accuracy
	}
	return []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	}
}

// SummaryLines formats a summary for display.
func SummaryLines(s Summary) []string {
	if s.Count == 0 {
		return []string{"No results found."}
	}
	return []string{
		fmt.Sprintf("Tests: %d", s.Count),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", s.BestWPM),
		fmt.Sprintf("Last WPM: %.2f", s.LastWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
	}
}

// RenderSummary prints a summary block.
func RenderSummary(w io.Writer, s Summary) error {
	for _, line := range SummaryLines(s) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ResultHeaders are the column titles of ResultRows.
var ResultHeaders = []string{"Completed", "Test", "WPM", "Accuracy", "Correct", "Incorrect", "Time"}

// ResultRows formats up to limit results, newest first. A limit <= 0 keeps all.
func ResultRows(results []model.Result, limit int) [][]string {
	n := len(results)
	if limit > 0 && n > limit {
		n = limit
	}
	rows := make([][]string, 0, n)
	for i := len(results) - 1; i >= 0 && len(rows) < n; i-- {
		r := results[i]
		rows = append(rows, []string{
			r.CompletedAt.Local().Format("2006-01-02 15:04"),
			r.Key(),
			fmt.Sprintf("%.2f", r.WPM),
			fmt.Sprintf("%.2f%%", r.Accuracy),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
			fmt.Sprintf("%.1fs", r.Elapsed.Seconds()),
		})
	}
	return rows
}

// RenderResultTable prints the most recent results as an aligned table.
func RenderResultTable(w io.Writer, results []model.Result, limit int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Recent Results"); err != nil {
		return err
	}
	lines := formatTable(ResultHeaders, ResultRows(results, limit), map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true})
	return writeLines(w, lines)
}

// CharHeaders are the column titles of CharRows.
var CharHeaders = []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}

// CharRows formats per-character aggregates, least accurate first.
func CharRows(aggs []model.CharAggregate) [][]string {
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := charAccuracy(sorted[i]), charAccuracy(sorted[j])
		if ai == aj {
			return sorted[i].Char < sorted[j].Char
		}
		return ai < aj
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.Char
		switch label {
		case " ":
			label = "<space>"
		case "\t":
			label = "<tab>"
		}
		latency := 0.0
		if agg.LatencyCount > 0 {
			latency = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.2f%%", charAccuracy(agg)*100),
			fmt.Sprintf("%.1f", latency),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	return rows
}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}
	lines := formatTable(CharHeaders, CharRows(aggs), map[int]bool{1: true, 2: true, 3: true, 4: true})
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
