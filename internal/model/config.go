package model

import (
	"time"
)

// Config holds the complete pagesentry configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
	Verify  VerifyConfig  `yaml:"verify" json:"verify"`
	Alerts  AlertsConfig  `yaml:"alerts" json:"alerts"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" json:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" json:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" json:"no_proxy"`
}

// MonitorConfig controls the scan scheduler
type MonitorConfig struct {
	// Interval between scheduled scans
	Interval time.Duration `yaml:"interval" json:"interval"`

	// MinTextLength below which a scan is skipped
	MinTextLength int `yaml:"min_text_length" json:"min_text_length"`

	// MaxClaims is the candidate cap per scan
	MaxClaims int `yaml:"max_claims" json:"max_claims"`
}

// VerifyConfig controls the remote verification backend
type VerifyConfig struct {
	// Backend name: "service", "openai", "" (local only)
	Backend string `yaml:"backend" json:"backend"`

	// BaseURL of the verification service
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Timeout for remote calls
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// APIKey comes from the environment, never persisted
	APIKey string `yaml:"-" json:"-"`

	// Model name (backend-specific)
	Model string `yaml:"model" json:"model"`

	// RatePerSecond limits per-host request rate
	RatePerSecond float64 `yaml:"rate_per_second" json:"rate_per_second"`

	// RateBurst is the per-host burst allowance
	RateBurst int `yaml:"rate_burst" json:"rate_burst"`

	// VerdictCacheTTL bounds how long verdicts stay cached
	VerdictCacheTTL time.Duration `yaml:"verdict_cache_ttl" json:"verdict_cache_ttl"`
}

// AlertsConfig controls the coordinator
type AlertsConfig struct {
	// NotificationLevel sets notification sensitivity
	NotificationLevel NotificationLevel `yaml:"notification_level" json:"notification_level"`

	// HistoryCap bounds the stored alert history
	HistoryCap int `yaml:"history_cap" json:"history_cap"`

	// MaxAge after which history entries are pruned
	MaxAge time.Duration `yaml:"max_age" json:"max_age"`

	// CleanupInterval is how often pruning runs
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`

	// DeepCheckFactConf is the fact-check confidence above which an
	// alert escalates to a deep check
	DeepCheckFactConf float64 `yaml:"deep_check_fact_conf" json:"deep_check_fact_conf"`

	// DeepCheckAIConf is the AI-detection confidence above which an
	// alert escalates to a deep check
	DeepCheckAIConf float64 `yaml:"deep_check_ai_conf" json:"deep_check_ai_conf"`

	// TrustedDomains suppress monitoring entirely
	TrustedDomains []string `yaml:"trusted_domains" json:"trusted_domains"`
}

// StorageConfig controls persisted state
type StorageConfig struct {
	Dir string `yaml:"dir" json:"dir"` // State directory (default ~/.pagesentry)
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "PageSentry/0.1 (+https://github.com/pagesentry/pagesentry)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Monitor: MonitorConfig{
			Interval:      5 * time.Second,
			MinTextLength: 100,
			MaxClaims:     15,
		},
		Verify: VerifyConfig{
			Backend:         "service",
			BaseURL:         "http://localhost:8000",
			Timeout:         12 * time.Second,
			RatePerSecond:   2,
			RateBurst:       5,
			VerdictCacheTTL: 10 * time.Minute,
		},
		Alerts: AlertsConfig{
			NotificationLevel: NotifyMedium,
			HistoryCap:        50,
			MaxAge:            7 * 24 * time.Hour,
			CleanupInterval:   time.Hour,
			DeepCheckFactConf: 0.7,
			DeepCheckAIConf:   0.8,
		},
	}
}
