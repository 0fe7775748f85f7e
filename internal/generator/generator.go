// Package generator builds typing word sequences.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces randomized word selections.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Sample picks up to count distinct entries of words in random order.
func (g *Generator) Sample(words []string, count int) []string {
	shuffled := g.Shuffle(words)
	if count < len(shuffled) {
		shuffled = shuffled[:count]
	}
	return shuffled
}

// Shuffle returns a shuffled copy of words.
func (g *Generator) Shuffle(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Weighted selects count words with replacement, biased toward words that
// contain weak characters.
func (g *Generator) Weighted(words []string, count int, weakSet map[rune]struct{}, factor float64) []string {
	if len(words) == 0 || count <= 0 {
		return nil
	}
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(words) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, words[idx])
	}
	return result
}
