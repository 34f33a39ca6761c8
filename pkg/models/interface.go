// Package models provides the chat-model provider layer: one interface
// over the conversational backends (Gemini, OpenAI, Anthropic, Ollama)
// and the opaque chat-session capability the orchestrator holds.
package models

import (
	"context"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

// Generation holds the tunable generation parameters of a model
// configuration.
type Generation struct {
	Temperature *float32
}

// Config describes one selectable model configuration. ID doubles as
// the chat-session cache key: changing the selected configuration
// discards the live session and creates a fresh one, with no history
// migration.
type Config struct {
	ID          string
	Name        string
	Description string
	Provider    string
	ModelID     string
	Generation  Generation
}

// ChatSession is an opaque conversational handle. The session owns its
// own turn history; callers hold only the handle, never the transcript.
type ChatSession interface {
	Send(ctx context.Context, text string, assets []assets.TransportAsset) (string, error)
}

// ChatModel creates chat sessions for one configured backend.
type ChatModel interface {
	NewSession() ChatSession
}

func temperature(cfg Config) (float32, bool) {
	if cfg.Generation.Temperature == nil {
		return 0, false
	}
	return *cfg.Generation.Temperature, true
}
