// Package bus is the in-process analog of extension message passing between
// page monitors and the background coordinator: asynchronous, at-most-once
// delivery per call, no ordering guarantee across senders. Sending to an
// endpoint that does not exist is silently dropped; a monitor that has not
// registered yet is an expected condition, not an error.
package bus

import (
	"context"
	"errors"
	"sync"
)

// Action identifies a cross-context message. These strings are the wire
// protocol and must not change.
type Action string

const (
	ActionToggleMonitoring     Action = "toggleMonitoring"
	ActionGetMonitoringStatus  Action = "getMonitoringStatus"
	ActionCheckCurrentPage     Action = "checkCurrentPage"
	ActionClearHighlights      Action = "clearHighlights"
	ActionParentModeAlert      Action = "parentModeAlert"
	ActionOpenParentModeReport Action = "openParentModeReport"
	ActionGetMonitoringStats   Action = "getMonitoringStats"
)

// Background is the well-known endpoint name of the alert coordinator
const Background = "background"

// Message is one cross-context request
type Message struct {
	Action  Action
	From    string
	Payload any
}

// Response statuses reported back through the message channel
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Response is the reply to a request-style message
type Response struct {
	Status         string
	HighlightCount int
	Data           any
	Err            string
}

// Handler processes one message. Handlers must be safe for concurrent calls.
type Handler func(Message) Response

// ErrNoEndpoint is returned by Request when the target is not registered
var ErrNoEndpoint = errors.New("bus: no such endpoint")

// Bus routes messages between named endpoints
type Bus struct {
	mu        sync.RWMutex
	endpoints map[string]Handler
}

// New creates an empty bus
func New() *Bus {
	return &Bus{endpoints: make(map[string]Handler)}
}

// Register attaches a handler under a name, replacing any previous one
func (b *Bus) Register(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endpoints[name] = h
}

// Unregister detaches an endpoint; in-flight deliveries still complete
func (b *Bus) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.endpoints, name)
}

func (b *Bus) lookup(name string) Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.endpoints[name]
}

// Send delivers fire-and-forget. The response is discarded; missing
// endpoints are silently ignored.
func (b *Bus) Send(to string, msg Message) {
	h := b.lookup(to)
	if h == nil {
		return
	}
	go h(msg)
}

// Request delivers and waits for the response or context cancellation.
// At-most-once: a cancelled request may still have executed on the far side.
func (b *Bus) Request(ctx context.Context, to string, msg Message) (Response, error) {
	h := b.lookup(to)
	if h == nil {
		return Response{}, ErrNoEndpoint
	}

	ch := make(chan Response, 1)
	go func() {
		ch <- h(msg)
	}()

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
