package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "data", "typetest.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return st
}

func wordsResult(words int, wpm float64, completed time.Time) model.Result {
	return model.Result{
		Config: model.TestConfig{
			Mode:       model.ModeWords,
			Words:      words,
			Difficulty: model.DifficultyEasy,
			Lang:       "english",
		},
		StartedAt:   completed.Add(-30 * time.Second),
		CompletedAt: completed,
		Elapsed:     30 * time.Second,
		WPM:         wpm,
		Accuracy:    95,
		Correct:     95,
		Incorrect:   5,
		Keystrokes:  100,
		Chars: []model.CharStats{
			{Char: "a", Correct: 10, Incorrect: 2, LatencySumMs: 900, LatencyCount: 9},
			{Char: "b", Correct: 5, Incorrect: 0, LatencySumMs: 400, LatencyCount: 4},
		},
	}
}

func TestSaveResultAssignsID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := st.SaveResult(ctx, wordsResult(25, 60, base))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	r := wordsResult(25, 61, base.Add(time.Minute))
	r.ID = "fixed-id"
	id, err = st.SaveResult(ctx, r)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != "fixed-id" {
		t.Fatalf("expected caller id to be kept, got %q", id)
	}
	if _, err := st.SaveResult(ctx, r); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
}

func TestListResultsFiltersAndOrders(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	timed := wordsResult(0, 80, base.Add(3*time.Minute))
	timed.Config.Mode = model.ModeTime
	timed.Config.Words = 0
	timed.Config.Duration = 30 * time.Second

	for _, r := range []model.Result{
		wordsResult(25, 50, base.Add(2*time.Minute)),
		wordsResult(25, 40, base),
		timed,
	} {
		if _, err := st.SaveResult(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	results, err := st.ListResults(ctx, model.StatsConfig{Key: "words_25_easy"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].WPM != 40 || results[1].WPM != 50 {
		t.Fatalf("expected ascending completion order, got %v then %v", results[0].WPM, results[1].WPM)
	}
	if !results[0].CompletedAt.Equal(base) || results[0].Elapsed != 30*time.Second {
		t.Fatalf("unexpected timestamps: %+v", results[0])
	}
	if results[0].Key() != "words_25_easy" {
		t.Fatalf("expected rebuilt key, got %q", results[0].Key())
	}

	results, err = st.ListResults(ctx, model.StatsConfig{Key: "time_30_easy"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 1 || results[0].Config.Duration != 30*time.Second {
		t.Fatalf("expected one time result, got %+v", results)
	}

	since := base.Add(time.Minute)
	results, err = st.ListResults(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results since %v, got %d", since, len(results))
	}
}

func TestListKeys(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, r := range []model.Result{
		wordsResult(25, 70, base),
		wordsResult(25, 55, base.Add(time.Minute)),
		wordsResult(50, 65, base.Add(2*time.Minute)),
	} {
		if _, err := st.SaveResult(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	keys, err := st.ListKeys(ctx)
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0].Key != "words_50_easy" {
		t.Fatalf("expected most recent key first, got %q", keys[0].Key)
	}
	if keys[1].Count != 2 || keys[1].BestWPM != 70 || keys[1].LastWPM != 55 {
		t.Fatalf("unexpected summary: %+v", keys[1])
	}

	summary, ok, err := st.SummaryForKey(ctx, "words_25_easy")
	if err != nil || !ok {
		t.Fatalf("summary: ok=%v err=%v", ok, err)
	}
	if summary.LastAccuracy != 95 || !summary.LastAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, ok, err := st.SummaryForKey(ctx, "time_15_hard"); err != nil || ok {
		t.Fatalf("expected no summary, ok=%v err=%v", ok, err)
	}
}

func TestCharAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.SaveResult(ctx, wordsResult(25, 60, base.Add(time.Duration(i)*time.Minute)))
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, id)
	}

	aggs, err := st.ListCharAggregates(ctx, ids[:2])
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 || aggs[0].Char != "a" {
		t.Fatalf("unexpected aggregates: %+v", aggs)
	}
	if aggs[0].Correct != 20 || aggs[0].Incorrect != 4 || aggs[0].LatencyCount != 18 {
		t.Fatalf("unexpected sums for a: %+v", aggs[0])
	}

	weak, err := st.GetWeakChars(ctx, 1, "english")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	for _, agg := range weak {
		if agg.Char == "a" && agg.Correct != 10 {
			t.Fatalf("expected window of one result, got %+v", agg)
		}
	}
	if weak, err := st.GetWeakChars(ctx, 5, "pirate"); err != nil || len(weak) != 0 {
		t.Fatalf("expected no stats for other language, got %+v err=%v", weak, err)
	}
}
