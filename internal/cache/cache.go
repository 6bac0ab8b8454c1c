// Package cache keeps shell-completion candidates (chat and workflow IDs) on
// disk for a short TTL so tab completion does not hit the API every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Keys used by the completion functions.
const (
	ChatsKey     = "chats"
	WorkflowsKey = "workflows"
)

// Entry is one cached completion list.
type Entry struct {
	Values    []string  `json:"values"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager handles cache operations.
type Manager struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// DefaultDir returns ~/.promptflow/cache.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".promptflow", "cache"), nil
}

// NewManager creates a cache rooted at dir (DefaultDir when empty).
func NewManager(dir string, ttl time.Duration) (*Manager, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Manager{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (m *Manager) path(key string) string {
	// Keys embed server URLs; keep them to a single path element.
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '&', '=':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(m.dir, safe+".json")
}

// Get returns cached values if they exist and have not expired.
func (m *Manager) Get(key string) ([]string, bool) {
	data, err := os.ReadFile(m.path(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if m.now().After(entry.ExpiresAt) {
		return nil, false
	}

	return entry.Values, true
}

// Set stores values with the manager's TTL.
func (m *Manager) Set(key string, values []string) error {
	data, err := json.Marshal(Entry{
		Values:    values,
		ExpiresAt: m.now().Add(m.ttl),
	})
	if err != nil {
		return err
	}

	return os.WriteFile(m.path(key), data, 0644)
}

// Clear removes a specific entry. A missing entry is not an error.
func (m *Manager) Clear(key string) error {
	if err := os.Remove(m.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ClearAll removes all cache entries.
func (m *Manager) ClearAll() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" {
			if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
				return err
			}
		}
	}

	return nil
}

// GetOrFetch returns the cached values for key, calling fetch and storing
// its result on a miss. Fetch errors are returned and nothing is cached.
// A nil manager always fetches.
func (m *Manager) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	if m != nil {
		if values, ok := m.Get(key); ok {
			return values, nil
		}
	}

	values, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if m != nil {
		// Completion still works without a writable cache.
		_ = m.Set(key, values)
	}
	return values, nil
}

// Key scopes name to a server so switching servers never offers stale IDs.
func Key(serverURL, name string) string {
	return serverURL + "_" + name
}
