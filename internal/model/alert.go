package model

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// Alert summarizes one page's detected issues. Created by the in-page
// monitor, owned thereafter by the alert coordinator. Immutable except for
// the later-attached DeepFactCheck field.
type Alert struct {
	ID             string     `json:"id"` // Timestamp-based
	Timestamp      time.Time  `json:"timestamp"`
	URL            string     `json:"url"`
	PageTitle      string     `json:"pageTitle"`
	AIDetection    *Detection `json:"aiDetection,omitempty"`
	FactCheck      *Detection `json:"factCheck,omitempty"`
	ContentPreview string     `json:"contentPreview"` // <= 200 chars
	DeepFactCheck  *DeepCheck `json:"deepFactCheck,omitempty"`
}

// DeepCheck is the result of the second-pass verification against the full
// content preview.
type DeepCheck struct {
	Verdict    Outcome   `json:"verdict"`
	Confidence float64   `json:"confidence"`
	Summary    string    `json:"summary,omitempty"`
	ShareURL   string    `json:"shareUrl,omitempty"`
	CheckedAt  time.Time `json:"checkedAt"`
}

// PreviewLimit caps the stored content preview
const PreviewLimit = 200

// NewAlert builds an alert with a timestamp-based ID and a capped preview
func NewAlert(url, title, content string, ai, factCheck *Detection) Alert {
	now := time.Now()
	preview := content
	// Cap counts characters so the cut never lands mid-rune
	if utf8.RuneCountInString(preview) > PreviewLimit {
		runes := []rune(preview)
		preview = string(runes[:PreviewLimit])
	}
	return Alert{
		ID:             strconv.FormatInt(now.UnixMilli(), 10),
		Timestamp:      now,
		URL:            url,
		PageTitle:      title,
		AIDetection:    ai,
		FactCheck:      factCheck,
		ContentPreview: preview,
	}
}

// Stats are the running counters persisted by the coordinator
type Stats struct {
	TotalScans                int       `json:"totalScans"`
	AlertsTriggered           int       `json:"alertsTriggered"`
	AIContentDetected         int       `json:"aiContentDetected"`
	SuspiciousContentDetected int       `json:"suspiciousContentDetected"`
	LastScanTime              time.Time `json:"lastScanTime"`
}

// NotificationLevel controls which alerts surface as notifications
type NotificationLevel string

const (
	NotifyLow    NotificationLevel = "low"    // Only confidence > 0.9
	NotifyMedium NotificationLevel = "medium" // AI > 0.6, fact-check > 0.7
	NotifyHigh   NotificationLevel = "high"   // Everything
)
