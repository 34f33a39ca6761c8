package models

import (
	"context"
	"fmt"
)

// Provider identifiers accepted by NewChatModel.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderDummy     = "dummy"
)

// NewChatModel constructs the chat model backing cfg.Provider.
func NewChatModel(ctx context.Context, cfg Config) (ChatModel, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiChat(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAIChat(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicChat(cfg), nil
	case ProviderOllama:
		return NewOllamaChat(cfg)
	case ProviderDummy:
		return &DummyChat{}, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
