// Package verify implements the claim verification pipeline: the local
// heuristic pass, the bounded remote check, and the deterministic mapping
// from verdicts to highlight risk.
package verify

import (
	"context"

	"github.com/pagesentry/pagesentry/internal/model"
)

// Checker issues remote verification calls. Implementations must honor the
// context deadline and carry only the isolated claim text, never the page.
type Checker interface {
	// Name returns the backend name
	Name() string

	// CheckClaim verifies a single claim
	CheckClaim(ctx context.Context, claim string) (*model.Verdict, error)

	// CheckContent runs the heavier full-content verification used for
	// deep checks and manual page checks
	CheckContent(ctx context.Context, content, url string) (*model.DeepCheck, error)
}

// RiskFor maps a verdict to its highlight risk. The mapping is fixed:
// FALSE/LIKELY_FALSE scale with confidence, UNVERIFIED/UNCERTAIN always get
// a low-risk marker, TRUE is never highlighted.
func RiskFor(v model.Verdict) model.Risk {
	switch v.Outcome {
	case model.OutcomeFalse, model.OutcomeLikelyFalse:
		switch {
		case v.Confidence > 0.7:
			return model.RiskHigh
		case v.Confidence > 0.4:
			return model.RiskMedium
		default:
			return model.RiskNone
		}
	case model.OutcomeUnverified, model.OutcomeUncertain:
		return model.RiskLow
	default:
		return model.RiskNone
	}
}
