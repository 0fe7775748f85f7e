package stats

import (
	"sort"

	"github.com/verte-zerg/typetest/internal/model"
)

// SelectWeakChars selects up to top of the least accurate characters. Characters
// that were never attempted and whitespace are skipped. A top <= 0 keeps all.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Correct+agg.Incorrect == 0 || agg.Char == "" || agg.Char == " " {
			continue
		}
		candidates = append(candidates, agg)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := charAccuracy(candidates[i]), charAccuracy(candidates[j])
		if ai != aj {
			return ai < aj
		}
		if candidates[i].Incorrect != candidates[j].Incorrect {
			return candidates[i].Incorrect > candidates[j].Incorrect
		}
		return candidates[i].Char < candidates[j].Char
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		weakSet[[]rune(agg.Char)[0]] = struct{}{}
	}
	return weakSet
}

// charAccuracy returns a 0-1 ratio; untried characters count as accurate.
func charAccuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
