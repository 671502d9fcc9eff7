// Package scan drives the monitoring lifecycle for one page: the periodic
// scan schedule, mutation-triggered cache invalidation, and the per-scan
// extract → verify → highlight pass. One Monitor corresponds to one
// monitored tab.
package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"github.com/pagesentry/pagesentry/internal/bus"
	"github.com/pagesentry/pagesentry/internal/extract"
	"github.com/pagesentry/pagesentry/internal/heuristic"
	"github.com/pagesentry/pagesentry/internal/highlight"
	"github.com/pagesentry/pagesentry/internal/model"
	"github.com/pagesentry/pagesentry/internal/verify"
	"go.uber.org/zap"
)

// State is the scheduler state machine: Disabled → Idle ⇄ Scanning, with
// Disabled reachable from any state.
type State int

const (
	StateDisabled State = iota
	StateIdle
	StateScanning
)

// String names the state for logs
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	default:
		return "disabled"
	}
}

// largeDivTextLen is the text size above which an inserted <div> counts as a
// structurally significant mutation
const largeDivTextLen = 100

// StatsRecorder receives scan completions. The coordinator implements it.
type StatsRecorder interface {
	RecordScan(t time.Time)
}

// Monitor owns the scan schedule and document state for one source
type Monitor struct {
	id        string
	source    Source
	extractor *extract.Extractor
	pipeline  *verify.Pipeline
	cfg       model.MonitorConfig
	b         *bus.Bus
	recorder  StatsRecorder
	logger    *zap.Logger

	baseCtx context.Context

	mu        sync.Mutex
	state     State
	doc       *goquery.Document
	renderer  *highlight.Renderer
	lastHash  string
	dirty     bool // Watcher saw a significant mutation; skip cache on next tick
	articles  int
	largeDivs int
	runCancel context.CancelFunc
}

// NewMonitor creates a monitor. id must be unique on the bus; an empty id
// gets a generated one.
func NewMonitor(id string, source Source, pipeline *verify.Pipeline, cfg model.MonitorConfig, b *bus.Bus, recorder StatsRecorder, logger *zap.Logger) *Monitor {
	if id == "" {
		id = "tab-" + uuid.NewString()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 100
	}

	return &Monitor{
		id:        id,
		source:    source,
		extractor: extract.NewExtractor(cfg.MaxClaims),
		pipeline:  pipeline,
		cfg:       cfg,
		b:         b,
		recorder:  recorder,
		logger:    logger.With(zap.String("monitor", id)),
	}
}

// ID returns the monitor's bus endpoint name
func (m *Monitor) ID() string {
	return m.id
}

// Start registers the monitor on the bus and enables it if the coordinator's
// persisted default says monitoring is on.
func (m *Monitor) Start(ctx context.Context) error {
	m.baseCtx = ctx
	if m.b != nil {
		m.b.Register(m.id, m.handleMessage)
	}

	enabled := true
	if m.b != nil {
		resp, err := m.b.Request(ctx, bus.Background, bus.Message{
			Action: bus.ActionGetMonitoringStatus,
			From:   m.id,
		})
		if err == nil {
			if v, ok := resp.Data.(bool); ok {
				enabled = v
			}
		}
	}

	if enabled {
		return m.Enable()
	}
	return nil
}

// Stop disables monitoring and leaves the bus
func (m *Monitor) Stop() {
	m.Disable()
	if m.b != nil {
		m.b.Unregister(m.id)
	}
}

// State returns the current scheduler state
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Enable starts the scan loop: one immediate scan, then the fixed interval,
// plus the source watcher.
func (m *Monitor) Enable() error {
	m.mu.Lock()
	if m.state != StateDisabled {
		m.mu.Unlock()
		return nil
	}
	if m.baseCtx == nil {
		m.baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.runCancel = cancel
	m.state = StateIdle
	m.mu.Unlock()

	events, err := m.source.Watch(ctx)
	if err != nil {
		m.logger.Warn("mutation watcher unavailable", zap.Error(err))
		events = nil
	}

	m.logger.Info("monitoring enabled", zap.String("source", m.source.Location()))
	go func() {
		if _, err := m.Scan(ctx, false); err != nil {
			m.logger.Warn("scan error", zap.Error(err))
		}
		m.loop(ctx, events)
	}()
	return nil
}

// Disable stops the timer and watcher, clears all highlights and the status
// indicator, and cancels any in-flight verification.
func (m *Monitor) Disable() {
	m.mu.Lock()
	if m.state == StateDisabled {
		m.mu.Unlock()
		return
	}
	cancel := m.runCancel
	m.runCancel = nil
	m.state = StateDisabled
	if m.renderer != nil {
		m.renderer.Clear()
		m.renderer.RemoveStatus(m.doc)
	}
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.logger.Info("monitoring disabled")
}

// ClearHighlights removes all highlights without changing the schedule
func (m *Monitor) ClearHighlights() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderer == nil {
		return 0
	}
	return m.renderer.Clear()
}

// Annotations returns the detail records behind the current highlights
func (m *Monitor) Annotations() []highlight.Annotation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderer == nil {
		return nil
	}
	return m.renderer.Annotations()
}

// HTML renders the current annotated document
func (m *Monitor) HTML() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return "", fmt.Errorf("no document loaded")
	}
	return m.doc.Html()
}

// loop is the scheduler: interval ticks scan, watcher events invalidate the
// unchanged-content cache key.
func (m *Monitor) loop(ctx context.Context, events <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Scan(ctx, false); err != nil {
				m.logger.Warn("scan error", zap.Error(err))
			}
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.checkMutation(ctx)
		}
	}
}

// checkMutation inspects the source after a watcher event. Only a
// structurally significant insertion (a new <article>, or a new
// text-bearing <div> above the size threshold) invalidates the cache key;
// the next tick then does real work.
func (m *Monitor) checkMutation(ctx context.Context) {
	page, err := m.source.Load(ctx)
	if err != nil {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return
	}

	articles := doc.Find("article").Length()
	largeDivs := countLargeDivs(doc)

	m.mu.Lock()
	if articles > m.articles || largeDivs > m.largeDivs {
		m.dirty = true
		m.logger.Debug("significant mutation; cache invalidated",
			zap.Int("articles", articles),
			zap.Int("large_divs", largeDivs))
	}
	m.mu.Unlock()
}

// Scan runs one pass: load, change detection, extraction, verification,
// highlighting, passive page-level checks. Manual scans bypass the
// unchanged-content skip and re-apply highlights from scratch. Returns the
// number of active highlights.
func (m *Monitor) Scan(ctx context.Context, manual bool) (int, error) {
	m.mu.Lock()
	if m.state == StateScanning {
		m.mu.Unlock()
		return 0, nil
	}
	if m.state == StateDisabled && !manual {
		m.mu.Unlock()
		return 0, nil
	}
	prev := m.state
	m.state = StateScanning
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.state == StateScanning {
			m.state = prev
		}
		m.mu.Unlock()
	}()

	page, err := m.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load page: %w", err)
	}

	fresh, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}

	text, title := pageText(page, fresh)
	hash := contentHash(text)

	m.mu.Lock()
	if !manual {
		if len(text) < m.cfg.MinTextLength || (hash == m.lastHash && !m.dirty) {
			count := 0
			if m.renderer != nil {
				count = m.renderer.Count()
			}
			m.mu.Unlock()
			return count, nil
		}
	}

	// New content replaces the document outright, the navigation analog:
	// old highlights die with the old tree.
	if m.doc == nil || hash != m.lastHash {
		m.doc = fresh
		m.renderer = highlight.NewRenderer(m.logger)
		m.articles = fresh.Find("article").Length()
		m.largeDivs = countLargeDivs(fresh)
		if prev != StateDisabled {
			m.renderer.ShowStatus(m.doc)
		}
	}
	m.lastHash = hash
	m.dirty = false
	doc := m.doc
	renderer := m.renderer
	m.mu.Unlock()

	if manual {
		m.mu.Lock()
		renderer.Clear()
		m.mu.Unlock()
	}

	reg := extract.NewRegistry()
	claims := m.extractor.Extract(doc, reg)
	m.logger.Debug("extracted claims", zap.Int("count", len(claims)))

	// Sequential in score order: the most salient claim's highlight lands
	// first when remote results trickle in.
	for _, claim := range claims {
		if ctx.Err() != nil {
			break
		}
		claim := claim
		m.pipeline.Check(ctx, claim, func(v model.Verdict, risk model.Risk) {
			m.mu.Lock()
			defer m.mu.Unlock()
			// Verdicts arriving after disable or navigation are ignored
			if m.renderer != renderer {
				return
			}
			if m.state == StateDisabled && !manual {
				return
			}
			renderer.Mark(reg.Node(claim.Node), v, risk)
		})
	}

	m.passiveCheck(page, title, text)

	if m.recorder != nil {
		m.recorder.RecordScan(time.Now())
	}

	m.mu.Lock()
	count := renderer.Count()
	m.mu.Unlock()
	return count, nil
}

// passiveCheck runs page-level heuristics independent of per-claim
// highlighting and ships an alert to the coordinator when either fires.
func (m *Monitor) passiveCheck(page *Page, title, text string) {
	susp := heuristic.CheckSuspicious(text)
	ai := heuristic.CheckAIGenerated(text)
	if !susp.Flagged && !ai.Flagged {
		return
	}
	if m.b == nil {
		return
	}

	var aiPtr, factPtr *model.Detection
	if ai.Flagged {
		aiPtr = &ai
	}
	if susp.Flagged {
		factPtr = &susp
	}

	m.b.Send(bus.Background, bus.Message{
		Action:  bus.ActionParentModeAlert,
		From:    m.id,
		Payload: model.NewAlert(page.URL, title, text, aiPtr, factPtr),
	})
}

// handleMessage is the monitor's bus endpoint
func (m *Monitor) handleMessage(msg bus.Message) bus.Response {
	switch msg.Action {
	case bus.ActionToggleMonitoring:
		enabled, _ := msg.Payload.(bool)
		if enabled {
			if err := m.Enable(); err != nil {
				return bus.Response{Status: bus.StatusError, Err: err.Error()}
			}
		} else {
			m.Disable()
		}
		return bus.Response{Status: bus.StatusCompleted}

	case bus.ActionGetMonitoringStatus:
		return bus.Response{Status: bus.StatusCompleted, Data: m.State() != StateDisabled}

	case bus.ActionCheckCurrentPage:
		ctx := m.baseCtx
		if ctx == nil {
			ctx = context.Background()
		}
		count, err := m.Scan(ctx, true)
		if err != nil {
			return bus.Response{Status: bus.StatusError, Err: err.Error()}
		}
		return bus.Response{Status: bus.StatusCompleted, HighlightCount: count}

	case bus.ActionClearHighlights:
		m.ClearHighlights()
		return bus.Response{Status: bus.StatusCompleted}

	default:
		return bus.Response{Status: bus.StatusError, Err: "unknown action: " + string(msg.Action)}
	}
}

// pageText extracts the page-level text used for change detection and
// passive checks. Readability isolates the main content; pages it cannot
// handle fall back to a plain visible-text walk.
func pageText(page *Page, doc *goquery.Document) (text, title string) {
	title = strings.TrimSpace(doc.Find("title").First().Text())

	if parsed, err := url.Parse(page.URL); err == nil {
		parser := readability.NewParser()
		article, rErr := parser.Parse(strings.NewReader(page.HTML), parsed)
		if rErr == nil {
			if t := strings.Join(strings.Fields(article.TextContent), " "); t != "" {
				if article.Title != "" {
					title = article.Title
				}
				return t, title
			}
		}
	}

	if len(doc.Nodes) == 0 {
		return "", title
	}
	return extract.VisibleText(doc.Nodes[0]), title
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// countLargeDivs counts text-bearing divs above the significance threshold
func countLargeDivs(doc *goquery.Document) int {
	count := 0
	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		if len(strings.Join(strings.Fields(s.Text()), " ")) >= largeDivTextLen {
			count++
		}
	})
	return count
}
