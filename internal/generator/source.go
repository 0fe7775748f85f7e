package generator

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/wordlist"
)

// ErrNotEnoughWords is returned by a strict Source asked for more words than a tier holds.
var ErrNotEnoughWords = errors.New("not enough words")

// Source serves words from difficulty tiers.
//
// A strict source samples each batch without replacement and fails when the
// tier is too small. A cycling source deals from a shuffled deck and reshuffles
// when the deck runs out, so it never starves.
type Source struct {
	gen    *Generator
	tiers  wordlist.Tiers
	cycle  bool
	decks  map[model.Difficulty][]string
	weak   map[rune]struct{}
	factor float64
}

// NewSource returns a Source over tiers.
func NewSource(gen *Generator, tiers wordlist.Tiers, cycle bool) *Source {
	return &Source{
		gen:   gen,
		tiers: tiers,
		cycle: cycle,
		decks: map[model.Difficulty][]string{},
	}
}

// FocusWeak biases selection toward words containing the given characters.
// An empty set restores uniform selection.
func (s *Source) FocusWeak(weak map[rune]struct{}, factor float64) {
	s.weak = weak
	s.factor = factor
}

// NextBatch returns count words of the given difficulty.
func (s *Source) NextBatch(difficulty model.Difficulty, count int) ([]string, error) {
	words := s.tiers[difficulty]
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no %s words loaded", ErrNotEnoughWords, difficulty)
	}
	if count <= 0 {
		return nil, nil
	}
	if len(s.weak) > 0 {
		return s.gen.Weighted(words, count, s.weak, s.factor), nil
	}
	if !s.cycle {
		if count > len(words) {
			return nil, fmt.Errorf("%w: requested %d %s words, have %d", ErrNotEnoughWords, count, difficulty, len(words))
		}
		return s.gen.Sample(words, count), nil
	}

	out := make([]string, 0, count)
	for len(out) < count {
		deck := s.decks[difficulty]
		if len(deck) == 0 {
			deck = s.gen.Shuffle(words)
		}
		n := count - len(out)
		if n > len(deck) {
			n = len(deck)
		}
		out = append(out, deck[:n]...)
		s.decks[difficulty] = deck[n:]
	}
	return out, nil
}
