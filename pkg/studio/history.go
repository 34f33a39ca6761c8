package studio

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/clipboard"
)

// shareAckDuration is how long the share notification stays visible.
const shareAckDuration = 3 * time.Second

// ErrEmptyTitle is returned when a history item is renamed to blank.
var ErrEmptyTitle = errors.New("history title must not be empty")

// ErrHistoryNotFound is returned for operations on unknown item ids.
var ErrHistoryNotFound = errors.New("history item not found")

// HistoryItem is one entry in the session-local history list. Nothing
// here survives a process restart.
type HistoryItem struct {
	ID     string
	Text   string
	Pinned bool
}

// History is the session history list: pinned items sort first, the
// rest keep insertion order.
type History struct {
	mu     sync.Mutex
	items  []HistoryItem
	shared map[string]bool
	clip   clipboard.Clipboard
	after  func(time.Duration, func())
}

// NewHistory creates an empty history list.
func NewHistory(clip clipboard.Clipboard, after func(time.Duration, func())) *History {
	return &History{
		shared: make(map[string]bool),
		clip:   clip,
		after:  after,
	}
}

// Add appends an entry and returns its id.
func (h *History) Add(text string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.NewString()
	h.items = append(h.items, HistoryItem{ID: id, Text: text})
	return id
}

// Items returns the list with pinned entries first.
func (h *History) Items() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryItem, len(h.items))
	copy(out, h.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pinned && !out[j].Pinned
	})
	return out
}

// SetPinned pins or unpins an entry.
func (h *History) SetPinned(id string, pinned bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	item := h.findLocked(id)
	if item == nil {
		return ErrHistoryNotFound
	}
	item.Pinned = pinned
	return nil
}

// Rename replaces an entry's text. Blank text is rejected.
func (h *History) Rename(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyTitle
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	item := h.findLocked(id)
	if item == nil {
		return ErrHistoryNotFound
	}
	item.Text = text
	return nil
}

// Delete removes an entry.
func (h *History) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.items {
		if h.items[i].ID == id {
			h.items = append(h.items[:i], h.items[i+1:]...)
			delete(h.shared, id)
			return nil
		}
	}
	return ErrHistoryNotFound
}

// Share copies an entry's text to the clipboard and arms a 3 second
// notification flag.
func (h *History) Share(id string) error {
	h.mu.Lock()
	item := h.findLocked(id)
	h.mu.Unlock()
	if item == nil {
		return ErrHistoryNotFound
	}
	if err := h.clip.Write(item.Text); err != nil {
		return err
	}

	h.mu.Lock()
	h.shared[id] = true
	h.mu.Unlock()

	h.after(shareAckDuration, func() {
		h.mu.Lock()
		delete(h.shared, id)
		h.mu.Unlock()
	})
	return nil
}

// Shared reports whether the share notification for an entry is
// still showing.
func (h *History) Shared(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shared[id]
}

func (h *History) findLocked(id string) *HistoryItem {
	for i := range h.items {
		if h.items[i].ID == id {
			return &h.items[i]
		}
	}
	return nil
}
