package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pagesentry/pagesentry/internal/model"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChecker verifies claims through an OpenAI-compatible chat API.
// Used when no fact-check service is reachable; same Checker contract, same
// silent-degrade semantics on failure.
type OpenAIChecker struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIChecker creates an OpenAI-backed checker. baseURL may point at
// any OpenAI-compatible endpoint.
func NewOpenAIChecker(apiKey, baseURL, modelName string, timeout time.Duration) (*OpenAIChecker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	return &OpenAIChecker{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   modelName,
		timeout: timeout,
	}, nil
}

// Name returns the backend name
func (c *OpenAIChecker) Name() string {
	return "openai"
}

const claimPrompt = `You are a careful fact-checking assistant. Assess the factual accuracy of the claim below.

Respond with exactly one JSON object, no prose:
{"verdict": "TRUE" | "FALSE" | "LIKELY_FALSE" | "UNVERIFIED" | "UNCERTAIN", "confidence": <0..1>, "explanation": "<one or two sentences>"}

Claim: %q`

const contentPrompt = `You are a careful fact-checking assistant. Assess the content below for factual accuracy.

Respond with exactly one JSON object, no prose:
{"verdict": "TRUE" | "FALSE" | "LIKELY_FALSE" | "UNVERIFIED" | "UNCERTAIN", "confidence": <0..1>, "summary": "<two or three sentences>"}

Content:
%s`

// CheckClaim verifies one claim
func (c *OpenAIChecker) CheckClaim(ctx context.Context, claim string) (*model.Verdict, error) {
	resp, err := c.complete(ctx, fmt.Sprintf(claimPrompt, claim))
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
func (c *OpenAIChecker) CheckContent(ctx context.Context, content, url string) (*model.DeepCheck, error) {
	if url != "" {
		content = content + "\n\nSource URL: " + url
	}
	resp, err := c.complete(ctx, fmt.Sprintf(contentPrompt, content))
	if err != nil {
		return nil, err
	}

	return &model.DeepCheck{
		Verdict:    parseOutcome(resp.Verdict),
		Confidence: resp.Confidence,
		Summary:    resp.Summary,
		CheckedAt:  time.Now(),
	}, nil
}

func (c *OpenAIChecker) complete(ctx context.Context, prompt string) (*checkResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   300,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseVerdictJSON(resp.Choices[0].Message.Content)
}

// parseVerdictJSON extracts the JSON object from a model response, tolerating
// surrounding code fences or prose
func parseVerdictJSON(content string) (*checkResponse, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var resp checkResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	return &resp, nil
}
