package session

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

type fakeSource struct {
	words []string
	limit int
	err   error
	calls int
}

func (f *fakeSource) NextBatch(_ model.Difficulty, count int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.limit > 0 && count > f.limit {
		count = f.limit
	}
	out := make([]string, 0, count)
	for i := 0; i < count && len(f.words) > 0; i++ {
		out = append(out, f.words[i%len(f.words)])
	}
	return out, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func wordsConfig(n int) model.TestConfig {
	return model.TestConfig{Mode: model.ModeWords, Words: n, Difficulty: model.DifficultyEasy, Lang: "english"}
}

func timeConfig(d time.Duration) model.TestConfig {
	return model.TestConfig{Mode: model.ModeTime, Duration: d, Difficulty: model.DifficultyEasy, Lang: "english"}
}

func mustNew(t *testing.T, cfg model.TestConfig, src WordSource, clock *fakeClock) *Session {
	t.Helper()
	s, err := New(cfg, src, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// typeText types every rune and moves the clock one second after each.
func typeText(t *testing.T, s *Session, clock *fakeClock, text string) Snapshot {
	t.Helper()
	var snap Snapshot
	for _, r := range text {
		var err error
		snap, err = s.HandleChar(r)
		if err != nil {
			t.Fatalf("handle %q: %v", r, err)
		}
		clock.Advance(time.Second)
	}
	return snap
}

func advance(t *testing.T, s *Session) Snapshot {
	t.Helper()
	snap, err := s.AdvanceWord()
	if err != nil {
		t.Fatalf("advance word: %v", err)
	}
	return snap
}

func TestWordsModeCatDog(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(2), &fakeSource{words: []string{"cat", "dog"}}, clock)

	typeText(t, s, clock, "cat")
	snap := advance(t, s)
	if snap.WordIndex != 1 || snap.CharIndex != 0 {
		t.Fatalf("expected word 1 char 0, got word %d char %d", snap.WordIndex, snap.CharIndex)
	}
	if snap.Correct != 3 || snap.Incorrect != 0 {
		t.Fatalf("expected 3/0, got %d/%d", snap.Correct, snap.Incorrect)
	}

	typeText(t, s, clock, "dog")
	snap = advance(t, s)
	if snap.Phase != Finished {
		t.Fatalf("expected finished, got %s", snap.Phase)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if res.Correct != 6 || res.Incorrect != 0 {
		t.Fatalf("expected 6/0, got %d/%d", res.Correct, res.Incorrect)
	}
	if res.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %.2f", res.Accuracy)
	}
	if res.Elapsed != 6*time.Second {
		t.Fatalf("expected elapsed 6s, got %s", res.Elapsed)
	}
	// (6/5) / (6/60)
	if res.WPM != 12 {
		t.Fatalf("expected wpm 12, got %.2f", res.WPM)
	}
	if res.Key() != "words_2_easy" {
		t.Fatalf("unexpected key %q", res.Key())
	}
}

func TestOverflowCountsIncorrect(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"cat"}}, clock)

	snap := typeText(t, s, clock, "cattt")
	if snap.CharIndex != 3 {
		t.Fatalf("expected char index to stay at 3, got %d", snap.CharIndex)
	}
	cur, ok := snap.Current()
	if !ok {
		t.Fatalf("expected current word in snapshot")
	}
	if cur.Overflow != 2 || cur.Extra != "tt" || cur.Target != "cat" {
		t.Fatalf("unexpected overflow state: %+v", cur)
	}

	advance(t, s)
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if res.Correct != 3 || res.Incorrect != 2 {
		t.Fatalf("expected 3/2, got %d/%d", res.Correct, res.Incorrect)
	}
	if res.Accuracy != 60 {
		t.Fatalf("expected accuracy 60, got %.2f", res.Accuracy)
	}
}

func TestMismatchMarksCharacter(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"dog"}}, clock)

	snap := typeText(t, s, clock, "dxg")
	cur, _ := snap.Current()
	want := []Status{Correct, Incorrect, Correct}
	for i, st := range want {
		if cur.Status[i] != st {
			t.Fatalf("char %d: expected %s, got %s", i, st, cur.Status[i])
		}
	}
	advance(t, s)
	res, _ := s.Result()
	if res.Correct != 2 || res.Incorrect != 1 {
		t.Fatalf("expected 2/1, got %d/%d", res.Correct, res.Incorrect)
	}
	if res.Accuracy != 66.67 {
		t.Fatalf("expected accuracy 66.67, got %v", res.Accuracy)
	}
}

func TestFinalWordDoesNotAutoFinish(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"dog"}}, clock)
	snap := typeText(t, s, clock, "dog")
	if snap.Phase != Running {
		t.Fatalf("expected running after exact final word, got %s", snap.Phase)
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("expected no result before advance")
	}
}

func TestTimeModeTickClampsElapsed(t *testing.T) {
	clock := newClock()
	s := mustNew(t, timeConfig(30*time.Second), &fakeSource{words: []string{"alpha", "beta"}}, clock)

	start := clock.Now()
	typeText(t, s, clock, "alpha")

	snap, err := s.Tick(start.Add(29 * time.Second))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if snap.Phase != Running {
		t.Fatalf("expected running before limit, got %s", snap.Phase)
	}
	if snap.Remaining != time.Second {
		t.Fatalf("expected 1s remaining, got %s", snap.Remaining)
	}

	snap, err = s.Tick(start.Add(45 * time.Second))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if snap.Phase != Finished {
		t.Fatalf("expected finished, got %s", snap.Phase)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if res.Elapsed != 30*time.Second {
		t.Fatalf("expected elapsed clamped to 30s, got %s", res.Elapsed)
	}
	// (5/5) / (30/60)
	if res.WPM != 2 {
		t.Fatalf("expected wpm 2, got %.2f", res.WPM)
	}
}

func TestTimeModeTickAtExactLimit(t *testing.T) {
	clock := newClock()
	s := mustNew(t, timeConfig(30*time.Second), &fakeSource{words: []string{"a"}}, clock)
	start := clock.Now()
	typeText(t, s, clock, "a")
	snap, err := s.Tick(start.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if snap.Phase != Finished {
		t.Fatalf("expected finished at the limit, got %s", snap.Phase)
	}
}

func TestTimeModeRefillsWords(t *testing.T) {
	clock := newClock()
	src := &fakeSource{words: []string{"a"}}
	s := mustNew(t, timeConfig(time.Minute), src, clock)
	if got := s.Snapshot().WordCount; got != timeInitialBatch {
		t.Fatalf("expected %d initial words, got %d", timeInitialBatch, got)
	}

	typeText(t, s, clock, "a")
	var snap Snapshot
	for i := 0; i < timeInitialBatch-refillThreshold+1; i++ {
		snap = advance(t, s)
	}
	if snap.WordCount != timeInitialBatch+refillBatch {
		t.Fatalf("expected %d words after refill, got %d", timeInitialBatch+refillBatch, snap.WordCount)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 source calls, got %d", src.calls)
	}
}

func TestTimeModeShortRefillStillProceeds(t *testing.T) {
	clock := newClock()
	src := &fakeSource{words: []string{"a"}, limit: 10}
	s := mustNew(t, timeConfig(time.Minute), src, clock)
	typeText(t, s, clock, "a")
	snap := advance(t, s)
	if snap.Phase != Running {
		t.Fatalf("expected running, got %s", snap.Phase)
	}
	if snap.WordCount != 20 {
		t.Fatalf("expected short batches to be appended, got %d words", snap.WordCount)
	}
}

func TestTimeModeSourceFailureCancels(t *testing.T) {
	clock := newClock()
	src := &fakeSource{words: []string{"a"}, limit: 10}
	s := mustNew(t, timeConfig(time.Minute), src, clock)
	typeText(t, s, clock, "a")
	src.err = errors.New("boom")

	snap, err := s.AdvanceWord()
	if !errors.Is(err, ErrWordSourceExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if snap.Phase != Cancelled {
		t.Fatalf("expected cancelled, got %s", snap.Phase)
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("expected no result for cancelled session")
	}
}

func TestWordsModeExhaustedSource(t *testing.T) {
	_, err := New(wordsConfig(5), &fakeSource{words: []string{"a"}, limit: 3})
	if !errors.Is(err, ErrWordSourceExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	_, err = New(wordsConfig(5), &fakeSource{err: errors.New("no words")})
	if !errors.Is(err, ErrWordSourceExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	src := &fakeSource{words: []string{"a"}}
	cases := []model.TestConfig{
		{Mode: model.ModeWords, Words: 0},
		{Mode: model.ModeTime, Duration: 0},
		{Mode: "marathon", Words: 3},
	}
	for _, cfg := range cases {
		if _, err := New(cfg, src); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("config %+v: expected invalid config error, got %v", cfg, err)
		}
	}
	if _, err := New(wordsConfig(1), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for nil source, got %v", err)
	}
}

func TestKeystrokesMatchCounters(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(3), &fakeSource{words: []string{"one", "two", "six"}}, clock)
	inputs := []string{"onee", "tw", "sxi"}
	for _, in := range inputs {
		for _, r := range in {
			snap, err := s.HandleChar(r)
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if snap.Keystrokes != snap.Correct+snap.Incorrect {
				t.Fatalf("keystrokes %d != correct %d + incorrect %d", snap.Keystrokes, snap.Correct, snap.Incorrect)
			}
		}
		snap := advance(t, s)
		if snap.Keystrokes != snap.Correct+snap.Incorrect {
			t.Fatalf("keystrokes %d != correct %d + incorrect %d", snap.Keystrokes, snap.Correct, snap.Incorrect)
		}
	}
}

func TestExactTypingIsFullAccuracy(t *testing.T) {
	targets := []string{"the", "quick", "brown", "fox"}
	clock := newClock()
	s := mustNew(t, wordsConfig(len(targets)), &fakeSource{words: targets}, clock)
	for _, w := range targets {
		typeText(t, s, clock, w)
		advance(t, s)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if res.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %.2f", res.Accuracy)
	}
}

func TestControlCharactersAreScored(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"a\tb"}}, clock)
	snap := typeText(t, s, clock, "a\x01\t")
	if snap.Correct != 1 || snap.Incorrect != 2 {
		t.Fatalf("expected 1/2, got %d/%d", snap.Correct, snap.Incorrect)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"cat"}}, clock)
	typeText(t, s, clock, "c")

	first, err := s.Cancel()
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	second, err := s.Cancel()
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if first.Phase != Cancelled || second.Phase != Cancelled {
		t.Fatalf("expected cancelled twice, got %s and %s", first.Phase, second.Phase)
	}
	if first.Correct != second.Correct || first.Keystrokes != second.Keystrokes {
		t.Fatalf("second cancel changed state: %+v vs %+v", first, second)
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("expected no result after cancel")
	}
}

func TestCancelBeforeStart(t *testing.T) {
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"cat"}}, newClock())
	snap, err := s.Cancel()
	if err != nil || snap.Phase != Cancelled {
		t.Fatalf("expected cancelled without error, got %s, %v", snap.Phase, err)
	}
}

func TestInvalidTransitionsLeaveStateUntouched(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"ab"}}, clock)

	if _, err := s.AdvanceWord(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition before start, got %v", err)
	}
	if _, err := s.Backspace(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for backspace before start, got %v", err)
	}
	if _, err := s.Tick(clock.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for tick in words mode, got %v", err)
	}

	typeText(t, s, clock, "ab")
	advance(t, s)
	before := s.Snapshot()

	_, err := s.HandleChar('x')
	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected transition error, got %v", err)
	}
	if terr.Phase != Finished {
		t.Fatalf("expected finished phase in error, got %s", terr.Phase)
	}
	if _, err := s.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected cancel after finish to fail, got %v", err)
	}
	after := s.Snapshot()
	if after.Phase != Finished || after.Keystrokes != before.Keystrokes || after.Correct != before.Correct {
		t.Fatalf("rejected call mutated state: %+v -> %+v", before, after)
	}
}

func TestRestartResetsState(t *testing.T) {
	clock := newClock()
	src := &fakeSource{words: []string{"cat", "dog"}}
	s := mustNew(t, wordsConfig(2), src, clock)
	typeText(t, s, clock, "cxt")
	advance(t, s)

	fresh, err := s.Restart()
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	snap := fresh.Snapshot()
	if snap.Phase != NotStarted {
		t.Fatalf("expected not started, got %s", snap.Phase)
	}
	if snap.WordIndex != 0 || snap.CharIndex != 0 {
		t.Fatalf("expected cursor reset, got word %d char %d", snap.WordIndex, snap.CharIndex)
	}
	if snap.Correct != 0 || snap.Incorrect != 0 || snap.Keystrokes != 0 {
		t.Fatalf("expected zero counters, got %+v", snap)
	}
	if src.calls != 2 {
		t.Fatalf("expected a fresh pull from the source, got %d calls", src.calls)
	}
	if fresh.Config() != s.Config() {
		t.Fatalf("expected same config after restart")
	}

	// The fresh session keeps the clock option.
	typeText(t, fresh, clock, "c")
	if fresh.Phase() != Running {
		t.Fatalf("expected running after typing, got %s", fresh.Phase())
	}
}

func TestBackspaceRevertsStatus(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"cat"}}, clock)

	typeText(t, s, clock, "cx")
	snap, err := s.Backspace()
	if err != nil {
		t.Fatalf("backspace: %v", err)
	}
	cur, _ := snap.Current()
	if cur.Status[1] != Pending || snap.CharIndex != 1 {
		t.Fatalf("expected char 1 pending at index 1, got %s at %d", cur.Status[1], snap.CharIndex)
	}
	if snap.Correct != 1 || snap.Incorrect != 0 {
		t.Fatalf("expected 1/0 after backspace, got %d/%d", snap.Correct, snap.Incorrect)
	}
	if snap.Keystrokes != 2 || snap.Corrections != 1 {
		t.Fatalf("expected keystrokes 2 corrections 1, got %d %d", snap.Keystrokes, snap.Corrections)
	}
	if snap.Keystrokes != snap.Correct+snap.Incorrect+snap.Corrections {
		t.Fatalf("counters out of balance: %+v", snap)
	}

	typeText(t, s, clock, "atz")
	snap, _ = s.Backspace()
	cur, _ = snap.Current()
	if cur.Overflow != 0 || snap.CharIndex != 3 {
		t.Fatalf("expected overflow removed first, got %+v", cur)
	}
	if snap.Correct != 3 || snap.Incorrect != 0 {
		t.Fatalf("expected 3/0, got %d/%d", snap.Correct, snap.Incorrect)
	}
}

func TestBackspaceStopsAtWordStart(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(2), &fakeSource{words: []string{"ab", "cd"}}, clock)
	typeText(t, s, clock, "ab")
	advance(t, s)
	snap, err := s.Backspace()
	if err != nil {
		t.Fatalf("backspace: %v", err)
	}
	if snap.WordIndex != 1 || snap.CharIndex != 0 || snap.Corrections != 0 {
		t.Fatalf("expected no-op at word start, got %+v", snap)
	}
}

func TestResultIsTakenOnce(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"a"}}, clock)
	typeText(t, s, clock, "a")
	advance(t, s)
	if _, ok := s.Result(); !ok {
		t.Fatalf("expected first result")
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("expected result to be taken only once")
	}
}

func TestResultCarriesCharStats(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"aab"}}, clock)
	typeText(t, s, clock, "axb")
	advance(t, s)
	res, _ := s.Result()
	byChar := map[string]model.CharStats{}
	for _, cs := range res.Chars {
		byChar[cs.Char] = cs
	}
	if a := byChar["a"]; a.Correct != 1 || a.Incorrect != 1 {
		t.Fatalf("unexpected stats for a: %+v", a)
	}
	// b follows the correct a by two seconds.
	if b := byChar["b"]; b.Correct != 1 || b.LatencyCount != 1 || b.LatencySumMs != 2000 {
		t.Fatalf("unexpected stats for b: %+v", b)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	clock := newClock()
	s := mustNew(t, wordsConfig(1), &fakeSource{words: []string{"cat"}}, clock)
	snap := typeText(t, s, clock, "c")
	snap.Words[0].Status[0] = Incorrect
	again := s.Snapshot()
	if again.Words[0].Status[0] != Correct {
		t.Fatalf("mutating a snapshot changed the session")
	}
}

func TestSnapshotWindow(t *testing.T) {
	clock := newClock()
	src := &fakeSource{words: []string{"a", "b", "c", "d", "e"}}
	s, err := New(wordsConfig(5), src, WithClock(clock.Now), WithWindow(1, 1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Words) != 2 || snap.Words[0].Index != 0 {
		t.Fatalf("expected words 0-1, got %+v", snap.Words)
	}
	typeText(t, s, clock, "a")
	advance(t, s)
	typeText(t, s, clock, "b")
	snap = advance(t, s)
	if len(snap.Words) != 3 || snap.Words[0].Index != 1 || snap.Words[2].Index != 3 {
		t.Fatalf("expected words 1-3, got %+v", snap.Words)
	}
}

func TestElapsedOnlyWhileRunning(t *testing.T) {
	clock := newClock()
	s := mustNew(t, timeConfig(10*time.Second), &fakeSource{words: []string{"a"}}, clock)
	snap := s.Snapshot()
	if snap.Elapsed != 0 || snap.Remaining != 10*time.Second {
		t.Fatalf("expected no elapsed before start, got %+v", snap)
	}
	clock.Advance(time.Minute)
	typeText(t, s, clock, "a")
	snap = s.Snapshot()
	if snap.Elapsed != time.Second {
		t.Fatalf("idle time before typing should not count, got %s", snap.Elapsed)
	}
}
