package model

// Outcome classifies a fact-check result
type Outcome string

const (
	OutcomeTrue        Outcome = "TRUE"
	OutcomeFalse       Outcome = "FALSE"
	OutcomeLikelyFalse Outcome = "LIKELY_FALSE"
	OutcomeUnverified  Outcome = "UNVERIFIED"
	OutcomeUncertain   Outcome = "UNCERTAIN"
)

// Verdict is the outcome of checking a single claim.
// Never mutated after creation.
type Verdict struct {
	Claim       Claim   `json:"claim"`
	Outcome     Outcome `json:"outcome"`
	Confidence  float64 `json:"confidence"` // 0..1
	Explanation string  `json:"explanation,omitempty"`
	Source      string  `json:"source"` // "local" or the remote backend name
}

// Risk is the visual severity a verdict maps to
type Risk int

const (
	RiskNone Risk = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// String returns the CSS-friendly name of the risk level
func (r Risk) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "none"
	}
}

// Detection is the result of a local heuristic check (suspicion or AI
// authorship). Cheap, synchronous, no network.
type Detection struct {
	Flagged    bool     `json:"flagged"`
	Confidence float64  `json:"confidence"`         // 0..1, clamped
	RedFlags   []string `json:"redFlags,omitempty"` // Which patterns matched
}
