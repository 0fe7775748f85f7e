package session

import (
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

// WordView is a read-only copy of one word's state.
type WordView struct {
	Index    int
	Target   string
	Status   []Status
	Overflow int
	Extra    string
}

// Snapshot is a render-ready copy of the session state. Changing it has no
// effect on the session.
type Snapshot struct {
	Phase     Phase
	Mode      model.Mode
	WordIndex int
	CharIndex int
	WordCount int
	Words     []WordView

	Correct     int
	Incorrect   int
	Keystrokes  int
	Corrections int

	// Elapsed and WPM are only set while running.
	Elapsed time.Duration
	WPM     float64
	// Remaining is the time left in Time mode; the full duration before the first keystroke.
	Remaining time.Duration
}

// Current returns the word under the cursor, if any.
func (s Snapshot) Current() (WordView, bool) {
	for _, w := range s.Words {
		if w.Index == s.WordIndex {
			return w, true
		}
	}
	return WordView{}, false
}

// Snapshot returns the current state using the session clock.
func (s *Session) Snapshot() Snapshot {
	return s.snapshotAt(s.now())
}

func (s *Session) snapshotAt(now time.Time) Snapshot {
	snap := Snapshot{
		Phase:       s.phase,
		Mode:        s.cfg.Mode,
		WordIndex:   s.wordIdx,
		CharIndex:   s.charIdx,
		WordCount:   len(s.words),
		Correct:     s.correct,
		Incorrect:   s.incorrect,
		Keystrokes:  s.keystrokes,
		Corrections: s.corrections,
	}

	switch s.phase {
	case Running:
		snap.Elapsed = now.Sub(s.startedAt)
		if snap.Elapsed < 0 {
			snap.Elapsed = 0
		}
		snap.WPM, _ = Compute(s.correct, s.incorrect, snap.Elapsed)
		if s.cfg.Mode == model.ModeTime {
			snap.Remaining = s.cfg.Duration - snap.Elapsed
			if snap.Remaining < 0 {
				snap.Remaining = 0
			}
		}
	case NotStarted:
		if s.cfg.Mode == model.ModeTime {
			snap.Remaining = s.cfg.Duration
		}
	}

	start, end := s.window()
	snap.Words = make([]WordView, 0, end-start)
	for i := start; i < end; i++ {
		w := s.words[i]
		status := make([]Status, len(w.status))
		copy(status, w.status)
		snap.Words = append(snap.Words, WordView{
			Index:    i,
			Target:   string(w.target),
			Status:   status,
			Overflow: len(w.extra),
			Extra:    string(w.extra),
		})
	}
	return snap
}

func (s *Session) window() (start, end int) {
	end = len(s.words)
	if s.before >= 0 && s.wordIdx-s.before > 0 {
		start = s.wordIdx - s.before
	}
	if s.after >= 0 && s.wordIdx+s.after+1 < end {
		end = s.wordIdx + s.after + 1
	}
	if start > end {
		start = end
	}
	return start, end
}
