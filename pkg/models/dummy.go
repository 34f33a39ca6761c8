package models

import (
	"context"
	"sync"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

// DummyChat is an in-memory model used in tests and offline runs. Each
// session replays the scripted replies in order, then falls back to
// echoing the input.
type DummyChat struct {
	Replies []string
}

func (d *DummyChat) NewSession() ChatSession {
	return &dummySession{replies: d.Replies}
}

type dummySession struct {
	mu      sync.Mutex
	replies []string
	next    int
	Turns   []string
}

func (s *dummySession) Send(_ context.Context, text string, _ []assets.TransportAsset) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Turns = append(s.Turns, text)
	if s.next < len(s.replies) {
		r := s.replies[s.next]
		s.next++
		return r, nil
	}
	return "echo: " + text, nil
}

var _ ChatModel = (*DummyChat)(nil)
