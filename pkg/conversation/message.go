// Package conversation owns the ordered message timeline of one view:
// it validates and dispatches submissions, merges results and failures
// back into the timeline, and tracks the per-message transient state
// (regeneration busy flags, copy acknowledgments).
package conversation

import (
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/gateway"
)

// Role marks which side of the conversation produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind is the variant tag of a message. The optional fields of Message
// are populated per kind; accessors check the tag so illegal
// combinations stay unrepresentable.
type Kind string

const (
	// KindPlainTurn is a plain text turn from either role.
	KindPlainTurn Kind = "plain"
	// KindRefinedPrompt is an assistant turn carrying a refined prompt,
	// its intent, and the originals needed to regenerate it.
	KindRefinedPrompt Kind = "refined_prompt"
	// KindGeneratedImage is an assistant turn carrying a generated or
	// edited image.
	KindGeneratedImage Kind = "generated_image"
	// KindGeneratedVideo is an assistant turn carrying a video locator.
	KindGeneratedVideo Kind = "generated_video"
)

// Message is one turn in a timeline. Identity is monotonic and unique
// within its timeline. Only Text, the intent and the Refreshing flag
// ever change after creation, and only during regeneration.
type Message struct {
	ID   uint64
	Role Role
	Kind Kind
	Text string

	// Previews carries the display previews of the attachments a user
	// turn was submitted with. The message owns their lifetime.
	Previews []assets.Releaser

	// Refreshing is set while this message is being regenerated.
	Refreshing bool

	intent              gateway.Intent
	originalPrompt      string
	originalAttachments []assets.Attachment
	image               *assets.TransportAsset
	videoURI            string
}

func newUserTurn(id uint64, text string, previews []assets.Releaser) *Message {
	return &Message{ID: id, Role: RoleUser, Kind: KindPlainTurn, Text: text, Previews: previews}
}

func newAssistantTurn(id uint64, text string) *Message {
	return &Message{ID: id, Role: RoleAssistant, Kind: KindPlainTurn, Text: text}
}

func newRefinedPrompt(id uint64, rp gateway.RefinedPrompt, originalPrompt string, originals []assets.Attachment) *Message {
	return &Message{
		ID:                  id,
		Role:                RoleAssistant,
		Kind:                KindRefinedPrompt,
		Text:                rp.Text,
		intent:              rp.Intent,
		originalPrompt:      originalPrompt,
		originalAttachments: originals,
	}
}

func newGeneratedImage(id uint64, text string, img assets.TransportAsset) *Message {
	return &Message{ID: id, Role: RoleAssistant, Kind: KindGeneratedImage, Text: text, image: &img}
}

func newGeneratedVideo(id uint64, text, uri string) *Message {
	return &Message{ID: id, Role: RoleAssistant, Kind: KindGeneratedVideo, Text: text, videoURI: uri}
}

// Refined returns the intent and the originals that produced a refined
// prompt. ok is false for every other kind; the three values are always
// present together.
func (m *Message) Refined() (intent gateway.Intent, originalPrompt string, originals []assets.Attachment, ok bool) {
	if m.Kind != KindRefinedPrompt {
		return "", "", nil, false
	}
	return m.intent, m.originalPrompt, m.originalAttachments, true
}

// GeneratedImage returns the image carried by a generated-image turn.
func (m *Message) GeneratedImage() (assets.TransportAsset, bool) {
	if m.Kind != KindGeneratedImage || m.image == nil {
		return assets.TransportAsset{}, false
	}
	return *m.image, true
}

// VideoURI returns the download locator of a generated-video turn.
func (m *Message) VideoURI() (string, bool) {
	if m.Kind != KindGeneratedVideo {
		return "", false
	}
	return m.videoURI, true
}

// releasePreviews frees the previews owned by this message.
func (m *Message) releasePreviews() {
	for _, p := range m.Previews {
		if p != nil {
			p.Release()
		}
	}
	m.Previews = nil
}
