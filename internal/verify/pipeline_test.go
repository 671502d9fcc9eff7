package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pagesentry/pagesentry/internal/model"
)

type fakeChecker struct {
	verdict *model.Verdict
	err     error
	calls   int
}

func (f *fakeChecker) Name() string { return "fake" }

func (f *fakeChecker) CheckClaim(_ context.Context, _ string) (*model.Verdict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v := *f.verdict
	return &v, nil
}

func (f *fakeChecker) CheckContent(_ context.Context, _, _ string) (*model.DeepCheck, error) {
	return nil, errors.New("not implemented")
}

func TestPipeline_LocalThenRemote(t *testing.T) {
	checker := &fakeChecker{verdict: &model.Verdict{
		Outcome:    model.OutcomeFalse,
		Confidence: 0.9,
		Source:     "fake",
	}}
	p := NewPipeline(checker, time.Minute, nil)

	claim := model.Claim{Text: "Doctors hate this miracle cure, act now before it is gone"}

	var results []model.Risk
	p.Check(context.Background(), claim, func(v model.Verdict, risk model.Risk) {
		results = append(results, risk)
	})

	// Local heuristic fires first (three sensational patterns), then the
	// remote verdict upgrades it
	if len(results) != 2 {
		t.Fatalf("Expected 2 results (local then remote), got %d", len(results))
	}
	if results[0] != model.RiskMedium {
		t.Errorf("Expected local result at medium risk, got %s", results[0])
	}
	if results[1] != model.RiskHigh {
		t.Errorf("Expected remote result at high risk, got %s", results[1])
	}
}

func TestPipeline_RemoteFailureDegrades(t *testing.T) {
	checker := &fakeChecker{err: errors.New("connection refused")}
	p := NewPipeline(checker, time.Minute, nil)

	claim := model.Claim{Text: "Doctors hate this miracle cure, act now before it is gone"}

	var results []model.Verdict
	p.Check(context.Background(), claim, func(v model.Verdict, _ model.Risk) {
		results = append(results, v)
	})

	if len(results) != 1 {
		t.Fatalf("Expected only the local result, got %d", len(results))
	}
	if results[0].Source != "local" {
		t.Errorf("Expected local source, got %q", results[0].Source)
	}
	if results[0].Outcome != model.OutcomeLikelyFalse {
		t.Errorf("Expected LIKELY_FALSE, got %s", results[0].Outcome)
	}
}

func TestPipeline_CleanClaimNoLocalResult(t *testing.T) {
	checker := &fakeChecker{verdict: &model.Verdict{
		Outcome:    model.OutcomeTrue,
		Confidence: 0.8,
	}}
	p := NewPipeline(checker, time.Minute, nil)

	claim := model.Claim{Text: "The council approved the budget after a short discussion"}

	var results []model.Risk
	p.Check(context.Background(), claim, func(_ model.Verdict, risk model.Risk) {
		results = append(results, risk)
	})

	if len(results) != 1 {
		t.Fatalf("Expected only the remote result, got %d", len(results))
	}
	if results[0] != model.RiskNone {
		t.Errorf("Expected a TRUE verdict to carry no risk, got %s", results[0])
	}
}

func TestPipeline_VerdictCached(t *testing.T) {
	checker := &fakeChecker{verdict: &model.Verdict{
		Outcome:    model.OutcomeFalse,
		Confidence: 0.9,
	}}
	p := NewPipeline(checker, time.Minute, nil)

	claim := model.Claim{Text: "The council approved the budget after a short discussion"}

	p.Check(context.Background(), claim, func(model.Verdict, model.Risk) {})
	p.Check(context.Background(), claim, func(model.Verdict, model.Risk) {})

	if checker.calls != 1 {
		t.Errorf("Expected 1 remote call with the second served from cache, got %d", checker.calls)
	}
}

func TestPipeline_LocalOnly(t *testing.T) {
	p := NewPipeline(nil, time.Minute, nil)
	if !p.LocalOnly() {
		t.Error("Expected a nil checker to mean local-only")
	}

	claim := model.Claim{Text: "The council approved the budget after a short discussion"}
	called := false
	p.Check(context.Background(), claim, func(model.Verdict, model.Risk) {
		called = true
	})
	if called {
		t.Error("Expected no results for a clean claim with no backend")
	}
}
