package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagesentry/pagesentry/internal/model"
)

func testConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "test-agent",
		MaxBodyBytes: 1 << 20,
	}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("Expected test-agent user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig())
	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.HTML != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", result.StatusCode)
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBodyBytes = 100
	fetcher := NewFetcher(cfg)

	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.HTML) != 100 {
		t.Errorf("Expected body truncated to 100 bytes, got %d", len(result.HTML))
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		_, _ = fmt.Fprint(w, "<html>final</html>")
	}))
	defer target.Close()

	fetcher := NewFetcher(testConfig())
	result, err := fetcher.Fetch(context.Background(), target.URL+"/start")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasSuffix(result.FinalURL, "/final") {
		t.Errorf("Expected final URL to reflect the redirect, got %s", result.FinalURL)
	}
}

func TestFetch_RedirectCap(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for an endless redirect chain")
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		_, _ = fmt.Fprint(w, "<html>content</html>")
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.RespectRobots = true
	fetcher := NewFetcher(cfg)

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/private/page"); err == nil {
		t.Fatal("Expected robots.txt to block the fetch")
	}
	if _, err := fetcher.Fetch(context.Background(), server.URL+"/public/page"); err != nil {
		t.Fatalf("Expected allowed path to fetch, got %v", err)
	}
}

func TestRobotsChecker_DegradesOpen(t *testing.T) {
	// No server at all: robots fetch fails, access is allowed
	checker := NewRobotsChecker("test-agent", 500*time.Millisecond)
	if !checker.IsAllowed(context.Background(), "http://127.0.0.1:1/page") {
		t.Error("Expected unreachable robots.txt to degrade open")
	}
}
