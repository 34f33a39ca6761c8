package models

import (
	"context"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

const anthropicMaxTokens = 1024

// AnthropicChat creates chat sessions against Anthropic's Messages API.
// As with OpenAI, the turn history lives inside the session handle.
type AnthropicChat struct {
	Client *anthropic.Client
	Cfg    Config
}

// NewAnthropicChat reads ANTHROPIC_API_KEY from the environment.
func NewAnthropicChat(cfg Config) *AnthropicChat {
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicChat{Client: &cl, Cfg: cfg}
}

func (a *AnthropicChat) NewSession() ChatSession {
	return &anthropicSession{client: a.Client, cfg: a.Cfg}
}

type anthropicSession struct {
	client  *anthropic.Client
	cfg     Config
	history []anthropic.MessageParam
}

func (s *anthropicSession) Send(ctx context.Context, text string, as []assets.TransportAsset) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(as)+1)
	for _, asset := range as {
		blocks = append(blocks, anthropic.NewImageBlockBase64(asset.MediaType, asset.Data))
	}
	blocks = append(blocks, anthropic.NewTextBlock(text))
	s.history = append(s.history, anthropic.NewUserMessage(blocks...))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.ModelID),
		MaxTokens: anthropicMaxTokens,
		Messages:  s.history,
	}
	if t, ok := temperature(s.cfg); ok {
		params.Temperature = anthropic.Float(float64(t))
	}

	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return "", err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	reply := b.String()
	s.history = append(s.history, anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)))
	return reply, nil
}

var _ ChatModel = (*AnthropicChat)(nil)
