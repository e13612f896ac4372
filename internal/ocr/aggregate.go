package ocr

import (
	"math"
	"strings"
)

// Aggregate joins the usable tokens and computes their mean confidence as a
// fraction rounded to two decimals.
func Aggregate(tokens []Token) (string, float64) {
	parts := make([]string, 0, len(tokens))
	sum := 0

	for _, tok := range tokens {
		if tok.Confidence <= -1 {
			continue
		}
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		sum += tok.Confidence
	}

	if len(parts) == 0 {
		return "", 0
	}

	mean := float64(sum) / float64(len(parts)) / 100.0
	return strings.Join(parts, " "), math.Round(mean*100) / 100
}

// Normalize collapses every run of whitespace to a single space and trims
// both ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
