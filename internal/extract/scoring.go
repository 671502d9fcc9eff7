package extract

import (
	"regexp"
	"strings"
)

// Scoring is additive: strong markers +2, medium markers +1, negative
// markers -2, floored at zero. A fragment qualifies as a candidate only when
// the final score reaches minScore.

// Strong markers: attribution phrases, announcement verbs, an authority
// followed by a reporting verb, and percentage/large-number mentions.
var strongMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(according to|sources? say|officials? (said|say)|study (finds|shows|found|showed)|research (shows|finds|found))\b`),
	regexp.MustCompile(`(?i)\b(confirms?|confirmed|announces?|announced|reveals?|revealed|discovers?|discovered)\b`),
	regexp.MustCompile(`(?i)\b(scientists?|experts?|doctors?|officials?|researchers?|authorities)\b.*\b(says?|said|claims?|claimed|confirms?|confirmed|warns?|warned|found|announced?)\b`),
	regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s*%|\b\d+(\.\d+)?\s*percent\b|\b(million|billion|trillion)s?\b|\b\d{4,}\b`),
}

// Medium markers: causal language, expert mentions, modal+causal verb
// pairs, urgency adjectives, prohibition language.
var mediumMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(because|leads? to|caused?|causes|results? in|due to|linked to)\b`),
	regexp.MustCompile(`(?i)\b(professor|expert|scientist|researcher|physician|economist)s?\b`),
	regexp.MustCompile(`(?i)\b(could|may|might|will|can)\s+(cause|lead|result|trigger|increase|reduce|harm)\b`),
	regexp.MustCompile(`(?i)\b(breaking|urgent|shocking|alarming|critical|unprecedented)\b`),
	regexp.MustCompile(`(?i)\b(banned|bans?|illegal|prohibited|forbidden|outlawed)\b`),
}

// Negative markers: navigation/UI calls to action, read-more style links,
// boilerplate footers.
var negativeMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(click here|subscribe|sign up|sign in|log in|learn more|read more|buy now|shop now|follow us|share this)\b`),
	regexp.MustCompile(`(?i)\b(all rights reserved|privacy policy|terms of (service|use)|cookie (policy|settings|preferences))\b`),
}

// Score computes the claim-likelihood score for a text fragment
func Score(text string) int {
	score := 0
	for _, re := range strongMarkers {
		if re.MatchString(text) {
			score += 2
		}
	}
	for _, re := range mediumMarkers {
		if re.MatchString(text) {
			score++
		}
	}
	for _, re := range negativeMarkers {
		if re.MatchString(text) {
			score -= 2
		}
	}
	// A trailing question mark marks a headline-style teaser, not a claim
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		score -= 2
	}
	if score < 0 {
		score = 0
	}
	return score
}
