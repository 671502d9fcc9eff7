package scan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesentry/pagesentry/internal/fetch"
	"github.com/pagesentry/pagesentry/internal/model"
)

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body>hi</body></html>"), 0o644))

	source := NewFileSource(path)
	page, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "hi")
	assert.True(t, strings.HasPrefix(page.URL, "file://"), "file sources get a file URL")
}

func TestFileSource_LoadMissing(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "absent.html"))
	_, err := source.Load(context.Background())
	assert.Error(t, err)
}

func TestFileSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := NewFileSource(path)
	events, err := source.Watch(ctx)
	require.NoError(t, err)
	require.NotNil(t, events)

	require.NoError(t, os.WriteFile(path, []byte("<html><p>changed</p></html>"), 0o644))

	select {
	case _, ok := <-events:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a watch event after a write")
	}

	// Writes to sibling files are filtered out
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.html"), []byte("x"), 0o644))
	select {
	case <-events:
		t.Fatal("Expected no event for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel closes on cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the channel to close")
	}
}

func TestURLSource_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>remote</body></html>"))
	}))
	defer server.Close()

	cfg := model.DefaultConfig().HTTP
	cfg.RespectRobots = false
	source := NewURLSource(server.URL, fetch.NewFetcher(cfg))

	page, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "remote")
	assert.Equal(t, server.URL, page.URL)
}

func TestURLSource_NoWatchChannel(t *testing.T) {
	source := NewURLSource("https://example.com", nil)
	events, err := source.Watch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, events, "URL sources rely on the interval")
}
