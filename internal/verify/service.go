package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pagesentry/pagesentry/internal/model"
	"golang.org/x/time/rate"
)

const factCheckPath = "/api/fact-check"

// ServiceClient talks to the remote fact-check service. The service is an
// external collaborator with a fixed request/response contract; this client
// never retries and treats every transport failure as a silent degrade.
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewServiceClient creates a client for the fact-check service at baseURL
func NewServiceClient(baseURL string, timeout time.Duration, ratePerSecond float64, burst int) *ServiceClient {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	if burst <= 0 {
		burst = 5
	}

	return &ServiceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// checkRequest is the wire format of the fact-check endpoint. The claim
// variant carries only the isolated claim text; the content variant carries
// the full preview for deep checks.
type checkRequest struct {
	Claim       string `json:"claim,omitempty"`
	Content     string `json:"content,omitempty"`
	ContentType string `json:"content_type"`
	URL         string `json:"url,omitempty"`
}

type checkResponse struct {
	Verdict     string  `json:"verdict"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	ShareURL    string  `json:"share_url,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Name returns the backend name
func (c *ServiceClient) Name() string {
	return "service"
}

// CheckClaim verifies one claim against the service
func (c *ServiceClient) CheckClaim(ctx context.Context, claim string) (*model.Verdict, error) {
	resp, err := c.post(ctx, checkRequest{
		Claim:       claim,
		ContentType: "text",
	})
	if err != nil {
		return nil, err
	}

	return &model.Verdict{
		Outcome:     parseOutcome(resp.Verdict),
		Confidence:  resp.Confidence,
		Explanation: resp.Explanation,
		Source:      c.Name(),
	}, nil
}

// CheckContent runs the heavier full-content verification
func (c *ServiceClient) CheckContent(ctx context.Context, content, url string) (*model.DeepCheck, error) {
	resp, err := c.post(ctx, checkRequest{
		Content:     content,
		ContentType: "text",
		URL:         url,
	})
	if err != nil {
		return nil, err
	}

	return &model.DeepCheck{
		Verdict:    parseOutcome(resp.Verdict),
		Confidence: resp.Confidence,
		Summary:    resp.Summary,
		ShareURL:   resp.ShareURL,
		CheckedAt:  time.Now(),
	}, nil
}

func (c *ServiceClient) post(ctx context.Context, reqBody checkRequest) (*checkResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+factCheckPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fact-check request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("service error (%d): %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var checkResp checkResponse
	if err := json.Unmarshal(body, &checkResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &checkResp, nil
}

// parseOutcome normalizes a wire verdict string, treating anything unknown
// as UNCERTAIN rather than failing the call
func parseOutcome(s string) model.Outcome {
	switch model.Outcome(strings.ToUpper(strings.TrimSpace(s))) {
	case model.OutcomeTrue:
		return model.OutcomeTrue
	case model.OutcomeFalse:
		return model.OutcomeFalse
	case model.OutcomeLikelyFalse:
		return model.OutcomeLikelyFalse
	case model.OutcomeUnverified:
		return model.OutcomeUnverified
	default:
		return model.OutcomeUncertain
	}
}
