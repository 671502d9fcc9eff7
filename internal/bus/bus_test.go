package bus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Request(t *testing.T) {
	b := New()
	b.Register("monitor-1", func(msg Message) Response {
		assert.Equal(t, ActionCheckCurrentPage, msg.Action)
		return Response{Status: StatusCompleted, HighlightCount: 3}
	})

	resp, err := b.Request(context.Background(), "monitor-1", Message{
		Action: ActionCheckCurrentPage,
		From:   Background,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, 3, resp.HighlightCount)
}

func TestBus_RequestNoEndpoint(t *testing.T) {
	b := New()
	_, err := b.Request(context.Background(), "nobody", Message{Action: ActionClearHighlights})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestBus_RequestCancelled(t *testing.T) {
	b := New()
	b.Register("slow", func(Message) Response {
		time.Sleep(200 * time.Millisecond)
		return Response{Status: StatusCompleted}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Request(ctx, "slow", Message{Action: ActionGetMonitoringStatus})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBus_SendMissingEndpointDropped(t *testing.T) {
	b := New()
	// Must not panic or block
	b.Send("nobody", Message{Action: ActionParentModeAlert})
}

func TestBus_SendDelivers(t *testing.T) {
	b := New()
	var calls atomic.Int32
	done := make(chan struct{})
	b.Register(Background, func(msg Message) Response {
		calls.Add(1)
		close(done)
		return Response{Status: StatusCompleted}
	})

	b.Send(Background, Message{Action: ActionParentModeAlert, From: "monitor-1"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected delivery within a second")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestBus_UnregisterStopsDelivery(t *testing.T) {
	b := New()
	b.Register("m", func(Message) Response { return Response{} })
	b.Unregister("m")

	_, err := b.Request(context.Background(), "m", Message{Action: ActionClearHighlights})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestBus_RegisterReplaces(t *testing.T) {
	b := New()
	b.Register("m", func(Message) Response { return Response{Data: "first"} })
	b.Register("m", func(Message) Response { return Response{Data: "second"} })

	resp, err := b.Request(context.Background(), "m", Message{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Data)
}

func TestActionStrings(t *testing.T) {
	// Wire protocol strings are frozen
	assert.Equal(t, Action("toggleMonitoring"), ActionToggleMonitoring)
	assert.Equal(t, Action("getMonitoringStatus"), ActionGetMonitoringStatus)
	assert.Equal(t, Action("checkCurrentPage"), ActionCheckCurrentPage)
	assert.Equal(t, Action("clearHighlights"), ActionClearHighlights)
	assert.Equal(t, Action("parentModeAlert"), ActionParentModeAlert)
	assert.Equal(t, Action("openParentModeReport"), ActionOpenParentModeReport)
	assert.Equal(t, Action("getMonitoringStats"), ActionGetMonitoringStats)
	assert.Equal(t, "background", Background)
	assert.Equal(t, "completed", StatusCompleted)
	assert.Equal(t, "error", StatusError)
}
