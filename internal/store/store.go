// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typetest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width in UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for test results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL,
			mode TEXT NOT NULL,
			length INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			lang TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_char_stats (
			result_id TEXT NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (result_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_key_completed ON results(key, completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_completed ON results(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_result_char_stats_char ON result_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a finished result and its per-character stats. A result
// without an id gets a new UUID. The stored id is returned.
func (s *Store) SaveResult(ctx context.Context, r model.Result) (id string, err error) {
	id = r.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, key, mode, length, difficulty, lang, started_at, completed_at, elapsed_ms, wpm, accuracy, correct, incorrect, keystrokes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		r.Key(),
		string(r.Config.Mode),
		r.Config.Length(),
		string(r.Config.Difficulty),
		r.Config.Lang,
		formatTime(r.StartedAt),
		formatTime(r.CompletedAt),
		r.Elapsed.Milliseconds(),
		r.WPM,
		r.Accuracy,
		r.Correct,
		r.Incorrect,
		r.Keystrokes,
	)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}

	if len(r.Chars) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO result_char_stats (result_id, char, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			return "", fmt.Errorf("prepare char stats: %w", perr)
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range r.Chars {
			if _, err = stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect, cs.LatencySumMs, cs.LatencyCount); err != nil {
				return "", fmt.Errorf("insert char stats: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit result: %w", err)
	}
	return id, nil
}

// ListResults returns results matching the filter, oldest first. Per-character
// stats are not loaded.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Key != "" {
		clauses = append(clauses, "key = ?")
		args = append(args, cfg.Key)
	}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, mode, length, difficulty, lang, started_at, completed_at, elapsed_ms, wpm, accuracy, correct, incorrect, keystrokes
		FROM results
		WHERE %s
		ORDER BY completed_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		var (
			r                    model.Result
			mode, difficulty     string
			length               int
			startedAt, completed string
			elapsedMs            int64
		)
		if err := rows.Scan(&r.ID, &mode, &length, &difficulty, &r.Config.Lang, &startedAt, &completed, &elapsedMs,
			&r.WPM, &r.Accuracy, &r.Correct, &r.Incorrect, &r.Keystrokes); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Config.Mode = model.Mode(mode)
		r.Config.Difficulty = model.Difficulty(difficulty)
		if r.Config.Mode == model.ModeTime {
			r.Config.Duration = time.Duration(length) * time.Second
		} else {
			r.Config.Words = length
		}
		if r.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if r.CompletedAt, err = parseTime(completed); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return results, nil
}

// ListKeys summarizes every stored key, most recently used first.
func (s *Store) ListKeys(ctx context.Context) ([]model.KeySummary, error) {
	return s.listKeys(ctx, "")
}

// SummaryForKey summarizes the results stored under one key. The boolean is
// false when the key has no results.
func (s *Store) SummaryForKey(ctx context.Context, key string) (model.KeySummary, bool, error) {
	summaries, err := s.listKeys(ctx, key)
	if err != nil {
		return model.KeySummary{}, false, err
	}
	if len(summaries) == 0 {
		return model.KeySummary{}, false, nil
	}
	return summaries[0], true, nil
}

func (s *Store) listKeys(ctx context.Context, key string) ([]model.KeySummary, error) {
	query := `SELECT r.key, COUNT(*), MAX(r.wpm), MAX(r.completed_at),
		(SELECT l.wpm FROM results l WHERE l.key = r.key ORDER BY l.completed_at DESC LIMIT 1),
		(SELECT l.accuracy FROM results l WHERE l.key = r.key ORDER BY l.completed_at DESC LIMIT 1)
	FROM results r
	WHERE (? = '' OR r.key = ?)
	GROUP BY r.key
	ORDER BY MAX(r.completed_at) DESC, r.key ASC`
	rows, err := s.db.QueryContext(ctx, query, key, key)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var summaries []model.KeySummary
	for rows.Next() {
		var ks model.KeySummary
		var lastAt string
		if err := rows.Scan(&ks.Key, &ks.Count, &ks.BestWPM, &lastAt, &ks.LastWPM, &ks.LastAccuracy); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		if ks.LastAt, err = parseTime(lastAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	return summaries, nil
}

// GetWeakChars aggregates character stats over the most recent results.
func (s *Store) GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_results AS (
		SELECT id FROM results
		WHERE (? = '' OR lang = ?)
		ORDER BY completed_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct), SUM(cs.incorrect), SUM(cs.latency_sum_ms), SUM(cs.latency_count)
	FROM result_char_stats cs
	JOIN recent_results r ON r.id = cs.result_id
	GROUP BY cs.char`
	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, fmt.Errorf("query weak chars: %w", err)
	}
	return scanCharAggregates(rows)
}

// ListCharAggregates sums per-character stats across the given results.
func (s *Store) ListCharAggregates(ctx context.Context, resultIDs []string) ([]model.CharAggregate, error) {
	if len(resultIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(resultIDs))
	args := make([]any, len(resultIDs))
	for i, id := range resultIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct), SUM(incorrect), SUM(latency_sum_ms), SUM(latency_count)
		FROM result_char_stats
		WHERE result_id IN (%s)
		GROUP BY char
		ORDER BY char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query char stats: %w", err)
	}
	return scanCharAggregates(rows)
}

func scanCharAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, fmt.Errorf("scan char stats: %w", err)
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read char stats: %w", err)
	}
	return result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
