package heuristic

import (
	"strings"

	"github.com/pagesentry/pagesentry/internal/model"
)

// repetitionThreshold is the duplicate-sentence ratio above which text reads
// as machine-generated boilerplate
const repetitionThreshold = 0.3

// aiDisclosures are self-referential phrasings left behind by LLM output.
// Each match adds 0.2 to the score.
var aiDisclosures = []string{
	"as an ai",
	"as a language model",
	"as an artificial intelligence",
	"i cannot browse",
	"i don't have access to real-time",
	"as of my last update",
	"as of my knowledge cutoff",
	"my training data",
	"regenerate response",
	"i'm just an ai",
}

// CheckAIGenerated flags text that looks machine-authored: AI disclaimers
// and a high duplicate-sentence ratio. Same accumulation and clamping rules
// as CheckSuspicious.
func CheckAIGenerated(text string) model.Detection {
	lower := strings.ToLower(text)

	score := 0.0
	var flags []string

	for _, phrase := range aiDisclosures {
		if strings.Contains(lower, phrase) {
			score += 0.2
			flags = append(flags, "disclosure: "+phrase)
		}
	}

	if ratio := duplicateSentenceRatio(lower); ratio > repetitionThreshold {
		score += 0.3
		flags = append(flags, "repetitive sentence structure")
	}

	return model.Detection{
		Flagged:    score > suspicionThreshold,
		Confidence: clamp(score),
		RedFlags:   flags,
	}
}

// duplicateSentenceRatio splits naively on sentence terminators and returns
// the fraction of sentences that repeat an earlier one
func duplicateSentenceRatio(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	total := 0
	dupes := 0
	seen := make(map[string]bool)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) < 10 {
			continue
		}
		total++
		if seen[s] {
			dupes++
		}
		seen[s] = true
	}

	if total == 0 {
		return 0
	}
	return float64(dupes) / float64(total)
}
