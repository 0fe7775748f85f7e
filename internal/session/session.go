// Package session implements the typing test engine: per-keystroke state,
// timing and the final result of a single test.
//
// A Session is not safe for concurrent use. The caller drives it from one
// event loop, feeding key presses and periodic ticks.
package session

import (
	"fmt"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

const (
	timeInitialBatch = 50
	refillThreshold  = 10
	refillBatch      = 20
)

// WordSource supplies target words for a difficulty tier.
type WordSource interface {
	NextBatch(difficulty model.Difficulty, count int) ([]string, error)
}

// Option customizes a Session.
type Option func(*Session)

// WithClock replaces time.Now as the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWindow limits snapshots to the given number of words before and after
// the current one. Negative values mean no limit.
func WithWindow(before, after int) Option {
	return func(s *Session) {
		s.before = before
		s.after = after
	}
}

type word struct {
	target []rune
	status []Status
	extra  []rune
}

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Session is the state of one typing test.
type Session struct {
	cfg    model.TestConfig
	source WordSource
	opts   []Option
	now    func() time.Time
	before int
	after  int

	words   []*word
	wordIdx int
	charIdx int

	phase     Phase
	startedAt time.Time
	endedAt   time.Time

	correct     int
	incorrect   int
	keystrokes  int
	corrections int

	charStats     map[rune]*charStat
	prevCorrectAt time.Time

	result      *model.Result
	resultTaken bool
}

// New pulls the initial words from source and returns a session that has not started.
// Words mode requires exactly cfg.Words words; Time mode pulls a buffer and refills it
// while typing.
func New(cfg model.TestConfig, source WordSource, opts ...Option) (*Session, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: word source is nil", ErrInvalidConfig)
	}
	s := &Session{
		cfg:       cfg,
		source:    source,
		opts:      opts,
		now:       time.Now,
		before:    -1,
		after:     -1,
		charStats: map[rune]*charStat{},
	}
	for _, opt := range opts {
		opt(s)
	}

	want := cfg.Words
	if cfg.Mode == model.ModeTime {
		want = timeInitialBatch
	}
	batch, err := source.NextBatch(cfg.Difficulty, want)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWordSourceExhausted, err)
	}
	switch cfg.Mode {
	case model.ModeWords:
		if len(batch) < cfg.Words {
			return nil, fmt.Errorf("%w: got %d of %d %s words", ErrWordSourceExhausted, len(batch), cfg.Words, cfg.Difficulty)
		}
		batch = batch[:cfg.Words]
	case model.ModeTime:
		if len(batch) == 0 {
			return nil, fmt.Errorf("%w: no %s words", ErrWordSourceExhausted, cfg.Difficulty)
		}
	}
	s.appendWords(batch)
	return s, nil
}

func validateConfig(cfg model.TestConfig) error {
	switch cfg.Mode {
	case model.ModeWords:
		if cfg.Words <= 0 {
			return fmt.Errorf("%w: words must be > 0", ErrInvalidConfig)
		}
	case model.ModeTime:
		if cfg.Duration <= 0 {
			return fmt.Errorf("%w: duration must be > 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}
	return nil
}

// Config returns the test configuration.
func (s *Session) Config() model.TestConfig {
	return s.cfg
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// HandleChar scores one typed character against the current word.
// The first call starts the clock. Characters past the end of the word are
// counted as incorrect overflow.
func (s *Session) HandleChar(r rune) (Snapshot, error) {
	if s.phase != NotStarted && s.phase != Running {
		return s.Snapshot(), s.reject("type")
	}
	now := s.now()
	if s.phase == NotStarted {
		s.phase = Running
		s.startedAt = now
	}
	s.keystrokes++

	w := s.words[s.wordIdx]
	if s.charIdx >= len(w.target) {
		w.extra = append(w.extra, r)
		s.incorrect++
		return s.snapshotAt(now), nil
	}

	expected := w.target[s.charIdx]
	entry := s.charEntry(expected)
	if r == expected {
		w.status[s.charIdx] = Correct
		s.correct++
		entry.correct++
		if !s.prevCorrectAt.IsZero() {
			entry.latencySumMs += now.Sub(s.prevCorrectAt).Milliseconds()
			entry.latencyCount++
		}
		s.prevCorrectAt = now
	} else {
		w.status[s.charIdx] = Incorrect
		s.incorrect++
		entry.incorrect++
	}
	s.charIdx++
	return s.snapshotAt(now), nil
}

// Backspace removes the last typed character of the current word. Overflow is
// removed first. The keystroke count is history and does not go down.
func (s *Session) Backspace() (Snapshot, error) {
	if s.phase != Running {
		return s.Snapshot(), s.reject("backspace")
	}
	w := s.words[s.wordIdx]
	switch {
	case len(w.extra) > 0:
		w.extra = w.extra[:len(w.extra)-1]
		s.incorrect--
		s.corrections++
	case s.charIdx > 0:
		s.charIdx--
		switch w.status[s.charIdx] {
		case Correct:
			s.correct--
		case Incorrect:
			s.incorrect--
		}
		w.status[s.charIdx] = Pending
		s.corrections++
	}
	return s.Snapshot(), nil
}

// AdvanceWord moves to the next word. In Words mode, advancing past the last
// word finishes the test.
func (s *Session) AdvanceWord() (Snapshot, error) {
	if s.phase != Running {
		return s.Snapshot(), s.reject("advance word")
	}
	now := s.now()
	s.wordIdx++
	s.charIdx = 0

	switch s.cfg.Mode {
	case model.ModeWords:
		if s.wordIdx >= len(s.words) {
			s.finish(now, now.Sub(s.startedAt))
		}
	case model.ModeTime:
		if err := s.refill(); err != nil {
			s.phase = Cancelled
			s.endedAt = now
			return s.snapshotAt(now), err
		}
	}
	return s.snapshotAt(now), nil
}

// Tick checks the time limit. It is only valid for a running Time mode test.
// When the limit is reached the result uses exactly the configured duration.
func (s *Session) Tick(now time.Time) (Snapshot, error) {
	if s.cfg.Mode != model.ModeTime {
		return s.Snapshot(), s.reject("tick in words mode")
	}
	if s.phase != Running {
		return s.Snapshot(), s.reject("tick")
	}
	if now.Sub(s.startedAt) >= s.cfg.Duration {
		s.finish(now, s.cfg.Duration)
	}
	return s.snapshotAt(now), nil
}

// Restart discards this session and builds a new one with the same
// configuration, source and options.
func (s *Session) Restart() (*Session, error) {
	return New(s.cfg, s.source, s.opts...)
}

// Cancel abandons the test. No result is produced. Cancelling twice is a no-op.
func (s *Session) Cancel() (Snapshot, error) {
	switch s.phase {
	case Cancelled:
		return s.Snapshot(), nil
	case NotStarted, Running:
		s.phase = Cancelled
		s.endedAt = s.now()
		return s.Snapshot(), nil
	default:
		return s.Snapshot(), s.reject("cancel")
	}
}

// Result returns the result of a finished test. It can be taken only once.
func (s *Session) Result() (model.Result, bool) {
	if s.result == nil || s.resultTaken {
		return model.Result{}, false
	}
	s.resultTaken = true
	return *s.result, true
}

func (s *Session) refill() error {
	if len(s.words)-s.wordIdx >= refillThreshold {
		return nil
	}
	batch, err := s.source.NextBatch(s.cfg.Difficulty, refillBatch)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWordSourceExhausted, err)
	}
	s.appendWords(batch)
	if s.wordIdx >= len(s.words) {
		return fmt.Errorf("%w: no %s words left", ErrWordSourceExhausted, s.cfg.Difficulty)
	}
	return nil
}

func (s *Session) finish(now time.Time, elapsed time.Duration) {
	s.phase = Finished
	s.endedAt = now
	wpm, acc := Compute(s.correct, s.incorrect, elapsed)
	s.result = &model.Result{
		Config:      s.cfg,
		StartedAt:   s.startedAt,
		CompletedAt: now,
		Elapsed:     elapsed,
		WPM:         wpm,
		Accuracy:    acc,
		Correct:     s.correct,
		Incorrect:   s.incorrect,
		Keystrokes:  s.keystrokes,
		Chars:       s.exportCharStats(),
	}
}

func (s *Session) appendWords(batch []string) {
	for _, text := range batch {
		target := []rune(text)
		s.words = append(s.words, &word{
			target: target,
			status: make([]Status, len(target)),
		})
	}
}

func (s *Session) charEntry(expected rune) *charStat {
	entry, ok := s.charStats[expected]
	if !ok {
		entry = &charStat{}
		s.charStats[expected] = entry
	}
	return entry
}

func (s *Session) exportCharStats() []model.CharStats {
	out := make([]model.CharStats, 0, len(s.charStats))
	for ch, entry := range s.charStats {
		out = append(out, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out
}

func (s *Session) reject(op string) error {
	return &TransitionError{Op: op, Phase: s.phase}
}
