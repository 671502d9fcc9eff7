package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagesentry/pagesentry/internal/model"
)

func TestServiceClient_CheckClaim(t *testing.T) {
	var gotReq checkRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fact-check" {
			t.Errorf("Expected /api/fact-check, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("Expected no decode error, got %v", err)
		}
		_ = json.NewEncoder(w).Encode(checkResponse{
			Verdict:     "LIKELY_FALSE",
			Confidence:  0.82,
			Explanation: "No supporting sources found",
		})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second, 100, 100)
	verdict, err := client.CheckClaim(context.Background(), "The moon is made of cheese")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotReq.Claim != "The moon is made of cheese" {
		t.Errorf("Expected claim in request, got %q", gotReq.Claim)
	}
	if gotReq.Content != "" {
		t.Error("Expected claim request to carry no content field")
	}
	if verdict.Outcome != model.OutcomeLikelyFalse {
		t.Errorf("Expected LIKELY_FALSE, got %s", verdict.Outcome)
	}
	if verdict.Confidence != 0.82 {
		t.Errorf("Expected confidence 0.82, got %.2f", verdict.Confidence)
	}
	if verdict.Source != "service" {
		t.Errorf("Expected source service, got %q", verdict.Source)
	}
}

func TestServiceClient_CheckContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Content == "" {
			t.Error("Expected content in deep-check request")
		}
		if req.URL != "https://example.com/article" {
			t.Errorf("Expected page URL in request, got %q", req.URL)
		}
		_ = json.NewEncoder(w).Encode(checkResponse{
			Verdict:    "FALSE",
			Confidence: 0.91,
			Summary:    "Contradicted by multiple sources",
			ShareURL:   "https://example.com/share/abc",
		})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second, 100, 100)
	deep, err := client.CheckContent(context.Background(), "full page text", "https://example.com/article")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if deep.Verdict != model.OutcomeFalse {
		t.Errorf("Expected FALSE, got %s", deep.Verdict)
	}
	if deep.ShareURL != "https://example.com/share/abc" {
		t.Errorf("Expected share URL, got %q", deep.ShareURL)
	}
	if deep.CheckedAt.IsZero() {
		t.Error("Expected CheckedAt to be set")
	}
}

func TestServiceClient_ErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Detail: "claim too long"})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second, 100, 100)
	_, err := client.CheckClaim(context.Background(), "some claim")
	if err == nil {
		t.Fatal("Expected an error for a 400 response")
	}
	if got := err.Error(); got != "service error (400): claim too long" {
		t.Errorf("Expected detail in error, got %q", got)
	}
}

func TestServiceClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 20*time.Millisecond, 100, 100)
	_, err := client.CheckClaim(context.Background(), "slow claim")
	if err == nil {
		t.Fatal("Expected a timeout error")
	}
}

func TestServiceClient_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewServiceClient(server.URL, 5*time.Second, 100, 100)

	done := make(chan error, 1)
	go func() {
		_, err := client.CheckClaim(ctx, "cancelled claim")
		done <- err
	}()

	<-started
	cancel()

	if err := <-done; err == nil {
		t.Fatal("Expected an error after cancellation")
	}
}
