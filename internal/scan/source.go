package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pagesentry/pagesentry/internal/fetch"
)

// Page is one loaded document snapshot
type Page struct {
	HTML string
	URL  string
}

// Source supplies documents to a monitor. A source is the stand-in for a
// browser tab's live page.
type Source interface {
	// Location identifies the source (URL or file path)
	Location() string

	// Load returns the current document
	Load(ctx context.Context) (*Page, error)

	// Watch returns a channel that fires when the underlying document may
	// have changed. Sources without change notification return a nil
	// channel; the interval timer still covers them.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// URLSource monitors a remote page over HTTP. Changes are caught by the
// interval re-fetch; there is no push channel.
type URLSource struct {
	url     string
	fetcher *fetch.Fetcher
}

// NewURLSource creates a source for a remote page
func NewURLSource(url string, fetcher *fetch.Fetcher) *URLSource {
	return &URLSource{url: url, fetcher: fetcher}
}

// Location returns the monitored URL
func (s *URLSource) Location() string {
	return s.url
}

// Load fetches the page
func (s *URLSource) Load(ctx context.Context) (*Page, error) {
	result, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return &Page{HTML: result.HTML, URL: result.FinalURL}, nil
}

// Watch returns no channel; URL sources rely on the scan interval
func (s *URLSource) Watch(_ context.Context) (<-chan struct{}, error) {
	return nil, nil
}

// FileSource monitors a local HTML file, with fsnotify as the mutation
// observer.
type FileSource struct {
	path string
}

// NewFileSource creates a source for a local HTML file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Location returns the file path
func (s *FileSource) Location() string {
	return s.path
}

// Load reads the file
func (s *FileSource) Load(_ context.Context) (*Page, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		abs = s.path
	}
	return &Page{HTML: string(data), URL: "file://" + abs}, nil
}

// Watch emits an event whenever the file is written or replaced. The parent
// directory is watched so atomic-save rewrites are caught too. Events are
// coalesced; the channel closes when ctx is done.
func (s *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch dir: %w", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer func() { _ = watcher.Close() }()
		defer close(events)

		base := filepath.Base(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return events, nil
}
