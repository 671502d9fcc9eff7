package verify

import (
	"fmt"

	"github.com/pagesentry/pagesentry/internal/model"
)

// NewChecker creates the configured verification backend. An empty backend
// disables remote verification entirely; the local heuristic still runs.
func NewChecker(cfg model.VerifyConfig) (Checker, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "service":
		return NewServiceClient(cfg.BaseURL, cfg.Timeout, cfg.RatePerSecond, cfg.RateBurst), nil
	case "openai":
		return NewOpenAIChecker(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown verification backend: %s", cfg.Backend)
	}
}
