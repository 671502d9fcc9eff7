package alert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagesentry/pagesentry/internal/model"
)

// State is the persisted settings/history/stats snapshot. JSON field names
// are the storage keys and must stay stable across versions.
type State struct {
	ParentalModeEnabled bool                    `json:"parentalModeEnabled"`
	NotificationLevel   model.NotificationLevel `json:"notificationLevel"`
	TrustedDomains      []string                `json:"trustedDomains"`
	AlertHistory        []model.Alert           `json:"alertHistory"`
	Stats               model.Stats             `json:"stats"`
}

// DefaultState returns the install-time state
func DefaultState(level model.NotificationLevel, trusted []string) *State {
	if level == "" {
		level = model.NotifyMedium
	}
	return &State{
		ParentalModeEnabled: true,
		NotificationLevel:   level,
		TrustedDomains:      append([]string(nil), trusted...),
	}
}

// Store persists coordinator state as a single JSON document. Only the
// coordinator goroutine writes, so no file locking is needed.
type Store struct {
	path string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "state.json")}
}

// Load reads the persisted state. A missing file returns (nil, nil): the
// caller initializes install-time defaults.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

// Save writes the state atomically via a temp file rename
func (s *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
