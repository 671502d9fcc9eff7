// Package alert implements the long-lived background coordinator: the single
// consumer of alerts from all monitors. It owns persisted settings, history
// and stats, decides notification visibility, escalates high-confidence
// findings to a deep second-pass check, and disables monitoring on trusted
// domains.
package alert

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pagesentry/pagesentry/internal/bus"
	"github.com/pagesentry/pagesentry/internal/model"
	"github.com/pagesentry/pagesentry/internal/verify"
	"go.uber.org/zap"
)

// Notification thresholds per sensitivity level
const (
	lowLevelThreshold    = 0.9 // "low" shows only near-certain findings
	mediumAIThreshold    = 0.6
	mediumFactThreshold  = 0.7
	deepConfirmThreshold = 0.7 // Deep-check verdicts above this re-notify critically
)

// Coordinator is the background context. All state mutation happens under
// one mutex, the analog of the host runtime serializing storage handlers.
type Coordinator struct {
	cfg      model.AlertsConfig
	store    *Store
	checker  verify.Checker // nil disables deep checks
	notifier Notifier
	b        *bus.Bus
	logger   *zap.Logger
	now      func() time.Time // Injectable for tests

	mu    sync.Mutex
	state *State

	deepWG sync.WaitGroup
}

// NewCoordinator loads or initializes persisted state and registers the
// background endpoint on the bus.
func NewCoordinator(cfg model.AlertsConfig, store *Store, checker verify.Checker, notifier Notifier, b *bus.Bus, logger *zap.Logger) (*Coordinator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 50
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.DeepCheckFactConf <= 0 {
		cfg.DeepCheckFactConf = 0.7
	}
	if cfg.DeepCheckAIConf <= 0 {
		cfg.DeepCheckAIConf = 0.8
	}

	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		// First run: install-time initialization
		state = DefaultState(cfg.NotificationLevel, cfg.TrustedDomains)
		if err := store.Save(state); err != nil {
			return nil, fmt.Errorf("init state: %w", err)
		}
		logger.Info("initialized coordinator state")
	}

	c := &Coordinator{
		cfg:      cfg,
		store:    store,
		checker:  checker,
		notifier: notifier,
		b:        b,
		logger:   logger,
		now:      time.Now,
		state:    state,
	}
	if b != nil {
		b.Register(bus.Background, c.handleMessage)
	}
	return c, nil
}

// Run drives the recurring history cleanup until the context is cancelled,
// then waits for in-flight deep checks.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.deepWG.Wait()
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// handleMessage is the bus endpoint for the background context
func (c *Coordinator) handleMessage(msg bus.Message) bus.Response {
	switch msg.Action {
	case bus.ActionParentModeAlert:
		a, ok := msg.Payload.(model.Alert)
		if !ok {
			return bus.Response{Status: bus.StatusError, Err: "malformed alert payload"}
		}
		c.HandleAlert(context.Background(), a)
		return bus.Response{Status: bus.StatusCompleted}

	case bus.ActionGetMonitoringStats:
		return bus.Response{Status: bus.StatusCompleted, Data: c.Stats()}

	case bus.ActionOpenParentModeReport:
		id, _ := msg.Payload.(string)
		if a, found := c.findAlert(id); found {
			c.logger.Info("opening alert report", zap.String("alert_id", id), zap.String("url", a.URL))
			return bus.Response{Status: bus.StatusCompleted, Data: a}
		}
		return bus.Response{Status: bus.StatusError, Err: "alert not found"}

	case bus.ActionToggleMonitoring:
		enabled, _ := msg.Payload.(bool)
		c.SetEnabled(enabled)
		return bus.Response{Status: bus.StatusCompleted}

	case bus.ActionGetMonitoringStatus:
		return bus.Response{Status: bus.StatusCompleted, Data: c.Enabled()}

	default:
		return bus.Response{Status: bus.StatusError, Err: "unknown action: " + string(msg.Action)}
	}
}

// HandleAlert ingests one alert: counters, capped history, persistence,
// notification decision, and possible deep-check escalation.
func (c *Coordinator) HandleAlert(ctx context.Context, a model.Alert) {
	c.mu.Lock()
	c.state.Stats.AlertsTriggered++
	if a.AIDetection != nil && a.AIDetection.Flagged {
		c.state.Stats.AIContentDetected++
	}
	if a.FactCheck != nil && a.FactCheck.Flagged {
		c.state.Stats.SuspiciousContentDetected++
	}

	// Prepend, evicting the oldest beyond the cap
	c.state.AlertHistory = append([]model.Alert{a}, c.state.AlertHistory...)
	if len(c.state.AlertHistory) > c.cfg.HistoryCap {
		c.state.AlertHistory = c.state.AlertHistory[:c.cfg.HistoryCap]
	}
	level := c.state.NotificationLevel
	c.persistLocked()
	c.mu.Unlock()

	if shouldNotify(level, a) {
		c.notify(ctx, a)
	}

	if c.checker != nil && needsDeepCheck(c.cfg, a) {
		c.deepWG.Add(1)
		go c.runDeepCheck(ctx, a)
	}
}

// shouldNotify applies the configured sensitivity level
func shouldNotify(level model.NotificationLevel, a model.Alert) bool {
	switch level {
	case model.NotifyLow:
		return (a.AIDetection != nil && a.AIDetection.Confidence > lowLevelThreshold) ||
			(a.FactCheck != nil && a.FactCheck.Confidence > lowLevelThreshold)
	case model.NotifyHigh:
		return true
	default: // medium
		return (a.AIDetection != nil && a.AIDetection.Confidence > mediumAIThreshold) ||
			(a.FactCheck != nil && a.FactCheck.Confidence > mediumFactThreshold)
	}
}

// needsDeepCheck decides whether either signal clears the escalation bar
func needsDeepCheck(cfg model.AlertsConfig, a model.Alert) bool {
	if a.FactCheck != nil && a.FactCheck.Confidence > cfg.DeepCheckFactConf {
		return true
	}
	if a.AIDetection != nil && a.AIDetection.Confidence > cfg.DeepCheckAIConf {
		return true
	}
	return false
}

func (c *Coordinator) notify(ctx context.Context, a model.Alert) {
	var parts []string
	if a.FactCheck != nil && a.FactCheck.Flagged {
		parts = append(parts, fmt.Sprintf("suspicious content (%.0f%%)", a.FactCheck.Confidence*100))
	}
	if a.AIDetection != nil && a.AIDetection.Flagged {
		parts = append(parts, fmt.Sprintf("AI-generated content (%.0f%%)", a.AIDetection.Confidence*100))
	}
	if len(parts) == 0 {
		parts = append(parts, "flagged content")
	}

	err := c.notifier.Notify(ctx, Notification{
		Title:   "PageSentry: " + a.PageTitle,
		Message: "Detected " + strings.Join(parts, " and ") + " on " + a.URL,
		Urgency: UrgencyNormal,
		AlertID: a.ID,
		Actions: []string{ActionViewDetails, ActionTrustSite},
	})
	if err != nil {
		c.logger.Warn("notification failed", zap.Error(err))
	}
}

// runDeepCheck performs the second-pass verification on the full content
// preview and attaches the result to the stored alert.
func (c *Coordinator) runDeepCheck(ctx context.Context, a model.Alert) {
	defer c.deepWG.Done()

	deep, err := c.checker.CheckContent(ctx, a.ContentPreview, a.URL)
	if err != nil {
		c.logger.Debug("deep check failed", zap.String("alert_id", a.ID), zap.Error(err))
		return
	}

	c.mu.Lock()
	for i := range c.state.AlertHistory {
		if c.state.AlertHistory[i].ID == a.ID {
			c.state.AlertHistory[i].DeepFactCheck = deep
			break
		}
	}
	c.persistLocked()
	c.mu.Unlock()

	// A confirmed high-confidence false result escalates
	if (deep.Verdict == model.OutcomeFalse || deep.Verdict == model.OutcomeLikelyFalse) &&
		deep.Confidence > deepConfirmThreshold {
		err := c.notifier.Notify(ctx, Notification{
			Title:          "PageSentry: misinformation confirmed",
			Message:        fmt.Sprintf("%s: %s (%.0f%% confidence)", a.URL, deep.Verdict, deep.Confidence*100),
			Urgency:        UrgencyCritical,
			RequireDismiss: true,
			AlertID:        a.ID,
			Actions:        []string{ActionViewDetails},
		})
		if err != nil {
			c.logger.Warn("escalation notification failed", zap.Error(err))
		}
	}
}

// HandleNavigation checks a completed navigation against the trusted-domain
// list and tells the monitor to disable itself when the host is trusted,
// overriding the global default.
func (c *Coordinator) HandleNavigation(monitorID, rawURL string) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return
	}
	if !c.IsTrusted(parsed.Host) {
		return
	}

	c.logger.Info("trusted domain; disabling monitoring",
		zap.String("monitor", monitorID),
		zap.String("host", parsed.Host))
	if c.b != nil {
		c.b.Send(monitorID, bus.Message{
			Action:  bus.ActionToggleMonitoring,
			From:    bus.Background,
			Payload: false,
		})
	}
}

// IsTrusted matches a host against the allow-list: exact match, subdomain
// match, or substring containment.
func (c *Coordinator) IsTrusted(host string) bool {
	host = strings.ToLower(host)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.state.TrustedDomains {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) || strings.Contains(host, entry) {
			return true
		}
	}
	return false
}

// TrustSite adds a host to the allow-list and confirms with a low-priority
// notification. The "trust this site" notification action.
func (c *Coordinator) TrustSite(ctx context.Context, host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return
	}

	c.mu.Lock()
	for _, entry := range c.state.TrustedDomains {
		if entry == host {
			c.mu.Unlock()
			return
		}
	}
	c.state.TrustedDomains = append(c.state.TrustedDomains, host)
	c.persistLocked()
	c.mu.Unlock()

	_ = c.notifier.Notify(ctx, Notification{
		Title:   "PageSentry",
		Message: host + " added to trusted sites",
		Urgency: UrgencyLow,
	})
}

// UntrustSite removes a host from the allow-list
func (c *Coordinator) UntrustSite(host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, entry := range c.state.TrustedDomains {
		if entry == host {
			c.state.TrustedDomains = append(c.state.TrustedDomains[:i], c.state.TrustedDomains[i+1:]...)
			c.persistLocked()
			return
		}
	}
}

// TrustedDomains returns a copy of the allow-list
func (c *Coordinator) TrustedDomains() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.state.TrustedDomains...)
}

// RecordScan bumps the scan counters. Implements scan.StatsRecorder.
func (c *Coordinator) RecordScan(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Stats.TotalScans++
	c.state.Stats.LastScanTime = t
	c.persistLocked()
}

// Cleanup evicts history entries older than the configured age
func (c *Coordinator) Cleanup() {
	cutoff := c.now().Add(-c.cfg.MaxAge)

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.state.AlertHistory[:0]
	for _, a := range c.state.AlertHistory {
		if a.Timestamp.After(cutoff) {
			kept = append(kept, a)
		}
	}
	if len(kept) != len(c.state.AlertHistory) {
		c.logger.Info("pruned alert history",
			zap.Int("removed", len(c.state.AlertHistory)-len(kept)))
		c.state.AlertHistory = kept
		c.persistLocked()
	}
}

// Enabled reports the global monitoring default
func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ParentalModeEnabled
}

// SetEnabled persists the global monitoring default
func (c *Coordinator) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ParentalModeEnabled = enabled
	c.persistLocked()
}

// History returns a copy of the alert history, newest first
func (c *Coordinator) History() []model.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Alert(nil), c.state.AlertHistory...)
}

// Stats returns a copy of the running counters
func (c *Coordinator) Stats() model.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stats
}

func (c *Coordinator) findAlert(id string) (model.Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.state.AlertHistory {
		if a.ID == id {
			return a, true
		}
	}
	return model.Alert{}, false
}

// persistLocked saves state; failures are logged and dropped, never
// propagated into the alert path.
func (c *Coordinator) persistLocked() {
	if err := c.store.Save(c.state); err != nil {
		c.logger.Warn("persist state failed", zap.Error(err))
	}
}
