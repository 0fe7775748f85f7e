package session

import (
	"math"
	"time"
)

// Compute derives words per minute and accuracy (0-100) from character counters.
// Only correct characters count toward WPM, five characters per word.
// Both values are rounded to two decimals; either is 0 when its denominator is 0.
func Compute(correct, incorrect int, elapsed time.Duration) (wpm, accuracy float64) {
	if total := correct + incorrect; total > 0 {
		accuracy = round2(float64(correct) / float64(total) * 100)
	}
	minutes := elapsed.Minutes()
	if minutes > 0 {
		wpm = round2((float64(correct) / 5.0) / minutes)
	}
	return wpm, accuracy
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
