// Package prefs persists the runtime backend override.
// Preferences are stored in ~/.config/crux/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/crux/internal/endpoint"
)

// Prefs holds the user's override of the bundled backend settings and the
// UI theme.
type Prefs struct {
	BackendURL string `toml:"backend_url,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Theme      string `toml:"theme,omitempty"`
}

const defaultPrefsPath = "~/.config/crux/prefs.toml"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to empty
// preferences if missing or unreadable.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{}, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	var prefs Prefs
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{}, nil // Graceful degradation
	}
	prefs.BackendURL = strings.TrimSpace(prefs.BackendURL)
	prefs.APIKey = strings.TrimSpace(prefs.APIKey)
	prefs.Theme = strings.TrimSpace(prefs.Theme)

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	// The file may hold an API key.
	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Store is the override layer of endpoint resolution. Reads are safe from
// any goroutine; a write is visible to the next resolution.
type Store struct {
	mu    sync.RWMutex
	path  string
	prefs Prefs
}

var _ endpoint.Layer = (*Store)(nil)

// Open loads the preferences at path into a Store.
func Open(path string) *Store {
	p, _ := Load(path)
	return &Store{path: path, prefs: p}
}

// BaseURL implements endpoint.Layer.
func (s *Store) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.BackendURL
}

// APIKey implements endpoint.Layer.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.APIKey
}

// Prefs returns a copy of the current preferences.
func (s *Store) Prefs() Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// SetBackend stores a backend override and persists it. An empty address
// clears the override. Addresses that would not resolve are rejected so a
// typo cannot silently fall back to a lower layer.
func (s *Store) SetBackend(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr != "" {
		if _, ok := endpoint.Parse(addr); !ok {
			return fmt.Errorf("invalid backend address %q", addr)
		}
	}
	return s.update(func(p *Prefs) { p.BackendURL = addr })
}

// SetAPIKey stores an API key override and persists it. Empty clears it.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	return s.update(func(p *Prefs) { p.APIKey = key })
}

// SetTheme records the UI theme.
func (s *Store) SetTheme(name string) error {
	name = strings.TrimSpace(name)
	return s.update(func(p *Prefs) { p.Theme = name })
}

// Clear removes the backend and key overrides. The theme is kept.
func (s *Store) Clear() error {
	return s.update(func(p *Prefs) { *p = Prefs{Theme: p.Theme} })
}

func (s *Store) update(fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.prefs
	fn(&next)
	if err := Save(s.path, next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
