// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a test ends.
type Mode string

// Test modes.
const (
	ModeWords Mode = "words"
	ModeTime  Mode = "time"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWords:
		return ModeWords, nil
	case ModeTime:
		return ModeTime, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want words or time)", s)
	}
}

// Difficulty is the word tier a test draws from.
type Difficulty string

// Difficulty tiers.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in menu order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
}

// Layout selects how the typing screen is drawn.
type Layout string

// Layout themes.
const (
	LayoutDefault Layout = "default"
	LayoutBoxes   Layout = "boxes"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutDefault:
		return LayoutDefault, nil
	case LayoutBoxes:
		return LayoutBoxes, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want default or boxes)", s)
	}
}

// TestConfig describes one typing test. It does not change for the lifetime of a session.
type TestConfig struct {
	Mode       Mode
	Words      int
	Duration   time.Duration
	Difficulty Difficulty
	Lang       string
}

// Key identifies results that are comparable with each other.
func (c TestConfig) Key() string {
	switch c.Mode {
	case ModeTime:
		return fmt.Sprintf("time_%d_%s", int(c.Duration/time.Second), c.Difficulty)
	default:
		return fmt.Sprintf("words_%d_%s", c.Words, c.Difficulty)
	}
}

// Length returns the word count or the duration in seconds, depending on the mode.
func (c TestConfig) Length() int {
	if c.Mode == ModeTime {
		return int(c.Duration / time.Second)
	}
	return c.Words
}

// Theme holds the colours used by the typing screen.
type Theme struct {
	Correct   string
	Incorrect string
	Pending   string
}

// Settings are the persisted user preferences.
type Settings struct {
	Mode       Mode
	Words      int
	TimeLimit  int
	Difficulty Difficulty
	Lang       string
	Layout     Layout
	RestartKey bool
	Theme      Theme
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// TestConfig derives the session configuration from settings.
func (s Settings) TestConfig() TestConfig {
	return TestConfig{
		Mode:       s.Mode,
		Words:      s.Words,
		Duration:   time.Duration(s.TimeLimit) * time.Second,
		Difficulty: s.Difficulty,
		Lang:       s.Lang,
	}
}

// CharStats stores per-character counters for a test.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// Result captures a finished typing test.
type Result struct {
	ID          string
	Config      TestConfig
	StartedAt   time.Time
	CompletedAt time.Time
	Elapsed     time.Duration
	WPM         float64
	Accuracy    float64
	Correct     int
	Incorrect   int
	Keystrokes  int
	Chars       []CharStats
}

// Key returns the configuration key of the result.
func (r Result) Key() string {
	return r.Config.Key()
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Key         string
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// CharAggregate aggregates character stats across results.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// KeySummary describes the stored results for one configuration key.
type KeySummary struct {
	Key          string
	Count        int
	BestWPM      float64
	LastWPM      float64
	LastAccuracy float64
	LastAt       time.Time
}
