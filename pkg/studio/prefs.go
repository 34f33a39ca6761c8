package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
)

// Theme is the resolved display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// PrefStore persists the theme preference. The coordinator only ever
// sees the resolved value; the storage mechanism stays behind this
// interface.
type PrefStore interface {
	Load() (Theme, error)
	Save(Theme) error
}

// Preferences holds the theme with an explicit init-on-start /
// write-on-change lifecycle.
type Preferences struct {
	mu    sync.Mutex
	theme Theme
	store PrefStore
	log   *slog.Logger
}

// NewPreferences loads the stored theme, defaulting to dark.
func NewPreferences(store PrefStore, log *slog.Logger) *Preferences {
	p := &Preferences{theme: ThemeDark, store: store, log: log}
	if t, err := store.Load(); err != nil {
		log.Warn("theme preference load failed", "error", err)
	} else if t == ThemeLight || t == ThemeDark {
		p.theme = t
	}
	return p
}

// Theme returns the current theme.
func (p *Preferences) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// SetTheme switches the theme and writes it through to the store.
// Store failures are logged; the in-memory value still changes.
func (p *Preferences) SetTheme(t Theme) {
	if t != ThemeLight && t != ThemeDark {
		return
	}
	p.mu.Lock()
	p.theme = t
	p.mu.Unlock()
	if err := p.store.Save(t); err != nil {
		p.log.Warn("theme preference save failed", "error", err)
	}
}

// MemoryPrefStore keeps the preference in-process.
type MemoryPrefStore struct {
	mu    sync.Mutex
	theme Theme
	set   bool
}

func (m *MemoryPrefStore) Load() (Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", nil
	}
	return m.theme, nil
}

func (m *MemoryPrefStore) Save(t Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theme = t
	m.set = true
	return nil
}

// FilePrefStore persists the preference as a small JSON file.
type FilePrefStore struct {
	Path string
}

type prefFile struct {
	Theme Theme `json:"theme"`
}

func (f *FilePrefStore) Load() (Theme, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read preferences: %w", err)
	}
	var pf prefFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return "", fmt.Errorf("decode preferences: %w", err)
	}
	return pf.Theme, nil
}

func (f *FilePrefStore) Save(t Theme) error {
	raw, err := json.Marshal(prefFile{Theme: t})
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, raw, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
