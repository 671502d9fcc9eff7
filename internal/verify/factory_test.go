package verify

import (
	"testing"
	"time"

	"github.com/pagesentry/pagesentry/internal/model"
)

func TestNewChecker(t *testing.T) {
	tests := []struct {
		name     string
		cfg      model.VerifyConfig
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{"empty backend is local only", model.VerifyConfig{Backend: ""}, true, false, ""},
		{"none backend is local only", model.VerifyConfig{Backend: "none"}, true, false, ""},
		{"service backend", model.VerifyConfig{Backend: "service", BaseURL: "http://localhost:8000"}, false, false, "service"},
		{"openai needs a key", model.VerifyConfig{Backend: "openai"}, false, true, ""},
		{"openai with key", model.VerifyConfig{Backend: "openai", APIKey: "sk-test", Timeout: time.Second}, false, false, "openai"},
		{"unknown backend", model.VerifyConfig{Backend: "carrier-pigeon"}, false, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := NewChecker(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.wantNil {
				if checker != nil {
					t.Fatalf("Expected nil checker, got %v", checker)
				}
				return
			}
			if checker.Name() != tt.wantName {
				t.Errorf("Expected backend %q, got %q", tt.wantName, checker.Name())
			}
		})
	}
}
