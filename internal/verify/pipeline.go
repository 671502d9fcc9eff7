package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pagesentry/pagesentry/internal/heuristic"
	"github.com/pagesentry/pagesentry/internal/model"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Pipeline runs the full per-claim check: local heuristic first, then at
// most one remote call per claim. Results are delivered through the apply
// callback as they arrive, so the local result is visible even when the
// network is down or slow.
type Pipeline struct {
	checker  Checker // nil disables remote verification
	verdicts *gocache.Cache
	logger   *zap.Logger
}

// NewPipeline creates a verification pipeline. cacheTTL bounds how long a
// remote verdict is reused for identical claim text across scans.
func NewPipeline(checker Checker, cacheTTL time.Duration, logger *zap.Logger) *Pipeline {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		checker:  checker,
		verdicts: gocache.New(cacheTTL, 2*cacheTTL),
		logger:   logger,
	}
}

// Check verifies one claim. apply is invoked once for the local result when
// it is positive, and once more when a remote verdict arrives. Remote
// failures degrade silently to the local-only result.
func (p *Pipeline) Check(ctx context.Context, claim model.Claim, apply func(model.Verdict, model.Risk)) {
	local := heuristic.CheckSuspicious(claim.Text)
	if local.Flagged {
		v := model.Verdict{
			Claim:       claim,
			Outcome:     model.OutcomeLikelyFalse,
			Confidence:  local.Confidence,
			Explanation: "Suspicious patterns: " + strings.Join(local.RedFlags, ", "),
			Source:      "local",
		}
		apply(v, model.RiskMedium)
	}

	if p.checker == nil {
		return
	}

	key := verdictKey(claim.Text)
	if cached, found := p.verdicts.Get(key); found {
		v := cached.(model.Verdict)
		v.Claim = claim
		apply(v, RiskFor(v))
		return
	}

	verdict, err := p.checker.CheckClaim(ctx, claim.Text)
	if err != nil {
		// Never surfaced to the user; the local result stands
		p.logger.Debug("remote verification failed",
			zap.String("backend", p.checker.Name()),
			zap.Error(err))
		return
	}

	verdict.Claim = claim
	p.verdicts.Set(key, *verdict, gocache.DefaultExpiration)
	apply(*verdict, RiskFor(*verdict))
}

// LocalOnly reports whether the pipeline has no remote backend
func (p *Pipeline) LocalOnly() bool {
	return p.checker == nil
}

// Checker returns the remote backend, nil when verification is local-only
func (p *Pipeline) Checker() Checker {
	return p.checker
}

func verdictKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return "pagesentry:v1:" + hex.EncodeToString(sum[:])
}
