package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/typetest/internal/model"
)

// recentRows is how many results the plain report lists.
const recentRows = 10

// Source provides the stored data a report is built from.
type Source interface {
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error)
	ListCharAggregates(ctx context.Context, resultIDs []string) ([]model.CharAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Config    model.StatsConfig
	Results   []model.Result
	Summary   Summary
	WindowIDs []string
	Chars     []model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	results, err := src.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("load results: %w", err)
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}

	window := results
	if cfg.CurveWindow > 0 && len(window) > cfg.CurveWindow {
		window = window[len(window)-cfg.CurveWindow:]
	}
	ids := make([]string, len(window))
	for i, r := range window {
		ids[i] = r.ID
	}
	chars, err := src.ListCharAggregates(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("load character stats: %w", err)
	}

	return Report{
		Config:    cfg,
		Results:   results,
		Summary:   Summarize(results),
		WindowIDs: ids,
		Chars:     chars,
	}, nil
}

// Render prints the whole report as plain text.
func (r Report) Render(w io.Writer, width, height int, color bool) error {
	title := "All results"
	if r.Config.Key != "" {
		title = r.Config.Key
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", title); err != nil {
		return err
	}
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if len(r.Results) == 0 {
		return nil
	}
	if err := RenderResultTable(w, r.Results, recentRows); err != nil {
		return err
	}
	if err := PlotSeries(w, "Learning Curves", CurveSeries(r.Results, r.Config.CurveWindow), PlotWidthFor(width), height, color); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderCharTable(w, r.Chars)
}
