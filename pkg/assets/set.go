package assets

import (
	"context"
	"fmt"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/concurrent"
)

// convertConcurrency bounds how many attachments are encoded at once
// when a batch is converted for an outbound request.
const convertConcurrency = 4

// Releaser frees a display preview. Previews are owned by whichever
// component created them and must be released exactly once when the
// corresponding attachment is removed or replaced.
type Releaser interface {
	Release()
}

// ReleaseFunc adapts a function to the Releaser interface.
type ReleaseFunc func()

func (f ReleaseFunc) Release() {
	if f != nil {
		f()
	}
}

// Set holds the attachments pending for the next submission together
// with their previews, kept in lockstep. It also tracks which
// attachment is currently displayed.
//
// Set is not safe for concurrent use; the owning orchestrator
// serializes access.
type Set struct {
	limit    int // 0 means unbounded
	items    []Attachment
	previews []Releaser
	display  int
}

// NewSet creates an attachment set. limit bounds the number of
// attachments the set accepts; 0 means unbounded.
func NewSet(limit int) *Set {
	return &Set{limit: limit}
}

// Add appends attachments with their previews, truncating to the
// remaining capacity when the set is bounded. It returns how many were
// accepted; previews beyond the accepted count are released.
func (s *Set) Add(atts []Attachment, previews []Releaser) int {
	if len(previews) != len(atts) {
		padded := make([]Releaser, len(atts))
		copy(padded, previews)
		previews = padded
	}

	accepted := len(atts)
	if s.limit > 0 {
		if free := s.limit - len(s.items); free < accepted {
			accepted = max(free, 0)
		}
	}

	for _, p := range previews[accepted:] {
		release(p)
	}

	s.items = append(s.items, atts[:accepted]...)
	s.previews = append(s.previews, previews[:accepted]...)
	return accepted
}

// Remove deletes the attachment at index i and releases its preview.
// The displayed index shifts down when an earlier attachment is
// removed, and clamps to the new last index when the displayed
// attachment itself was the last one.
func (s *Set) Remove(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("attachment index %d out of range [0,%d)", i, len(s.items))
	}

	release(s.previews[i])
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.previews = append(s.previews[:i], s.previews[i+1:]...)

	switch {
	case i < s.display:
		s.display--
	case i == s.display && s.display >= len(s.items):
		s.display = max(len(s.items)-1, 0)
	}
	return nil
}

// Reorder moves the attachment at from to position to, carrying its
// preview along so the two sequences never diverge.
func (s *Set) Reorder(from, to int) error {
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder indices (%d,%d) out of range [0,%d)", from, to, n)
	}
	if from == to {
		return nil
	}

	item, preview := s.items[from], s.previews[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.previews = append(s.previews[:from], s.previews[from+1:]...)

	s.items = append(s.items[:to], append([]Attachment{item}, s.items[to:]...)...)
	s.previews = append(s.previews[:to], append([]Releaser{preview}, s.previews[to:]...)...)
	return nil
}

// Take empties the set and transfers ownership of the attachments and
// previews to the caller. Nothing is released; the caller now owns the
// preview lifetimes.
func (s *Set) Take() ([]Attachment, []Releaser) {
	items, previews := s.items, s.previews
	s.items = nil
	s.previews = nil
	s.display = 0
	return items, previews
}

// Clear removes every attachment and releases all previews.
func (s *Set) Clear() {
	for _, p := range s.previews {
		release(p)
	}
	s.items = nil
	s.previews = nil
	s.display = 0
}

// Items returns a copy of the attachment sequence.
func (s *Set) Items() []Attachment {
	out := make([]Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of attachments held.
func (s *Set) Len() int { return len(s.items) }

// DisplayIndex reports which attachment is currently displayed.
func (s *Set) DisplayIndex() int { return s.display }

// SetDisplayIndex moves the displayed attachment; out-of-range values
// clamp to the valid range.
func (s *Set) SetDisplayIndex(i int) {
	if i < 0 {
		i = 0
	}
	if last := len(s.items) - 1; i > last {
		i = max(last, 0)
	}
	s.display = i
}

// ConvertAll derives the transport form of every attachment in atts.
// The conversion runs each time a request goes out; results are never
// reused across sends.
func ConvertAll(ctx context.Context, atts []Attachment) ([]TransportAsset, error) {
	return concurrent.ParallelMap(ctx, atts, func(att Attachment) (TransportAsset, error) {
		return Convert(ctx, att)
	}, convertConcurrency)
}

func release(p Releaser) {
	if p != nil {
		p.Release()
	}
}
