// Package heuristic implements the zero-network pattern classifiers that run
// before any remote verification: a sensational/clickbait detector and an
// AI-authorship detector. Both are pure functions over text.
package heuristic

import (
	"strings"
	"unicode"

	"github.com/pagesentry/pagesentry/internal/model"
)

// suspicionThreshold is the accumulated score above which text is flagged
const suspicionThreshold = 0.3

// sensationalPatterns are clickbait/scam phrasings. Each match adds 0.2 to
// the suspicion score.
var sensationalPatterns = []string{
	"you won't believe",
	"doctors hate",
	"one weird trick",
	"shocking truth",
	"they don't want you to know",
	"miracle cure",
	"act now",
	"limited time",
	"100% guaranteed",
	"secret revealed",
	"big pharma",
	"wake up sheeple",
	"banned video",
	"share before it's deleted",
	"this will change everything",
	"what happens next",
}

// CheckSuspicious scores text for sensational/clickbait/scam patterns.
// Adding a matching pattern to a text never decreases the confidence.
func CheckSuspicious(text string) model.Detection {
	lower := strings.ToLower(text)

	score := 0.0
	var flags []string

	for _, pattern := range sensationalPatterns {
		if strings.Contains(lower, pattern) {
			score += 0.2
			flags = append(flags, "pattern: "+pattern)
		}
	}

	if countCapsWords(text) > 5 {
		score += 0.1
		flags = append(flags, "excessive capitalization")
	}

	if strings.Count(text, "!") > 10 {
		score += 0.1
		flags = append(flags, "excessive exclamation marks")
	}

	return model.Detection{
		Flagged:    score > suspicionThreshold,
		Confidence: clamp(score),
		RedFlags:   flags,
	}
}

// countCapsWords counts fully-uppercase words of length >= 3
func countCapsWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		letters := 0
		upper := true
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
				if !unicode.IsUpper(r) {
					upper = false
					break
				}
			}
		}
		if upper && letters >= 3 {
			count++
		}
	}
	return count
}

func clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	return score
}
