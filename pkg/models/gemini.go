package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

// ---------------------------- Google Gemini ----------------------------------

// GeminiChat creates chat sessions backed by the Gemini API. The SDK's
// chat session accumulates the turn history implicitly; the caller only
// ever holds the opaque handle.
type GeminiChat struct {
	Client *genai.Client
	Cfg    Config
}

// NewGeminiChat builds a Gemini chat model with its own API client,
// reading GOOGLE_API_KEY or GEMINI_API_KEY from the environment.
func NewGeminiChat(ctx context.Context, cfg Config) (*GeminiChat, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiChat{Client: client, Cfg: cfg}, nil
}

// NewGeminiChatWithClient reuses an existing API client.
func NewGeminiChatWithClient(client *genai.Client, cfg Config) *GeminiChat {
	return &GeminiChat{Client: client, Cfg: cfg}
}

func (g *GeminiChat) NewSession() ChatSession {
	model := g.Client.GenerativeModel(g.Cfg.ModelID)
	if t, ok := temperature(g.Cfg); ok {
		model.SetTemperature(t)
	}
	return &geminiSession{chat: model.StartChat()}
}

type geminiSession struct {
	chat *genai.ChatSession
}

func (s *geminiSession) Send(ctx context.Context, text string, as []assets.TransportAsset) (string, error) {
	parts := make([]genai.Part, 0, len(as)+1)
	for _, a := range as {
		raw, err := a.Decode()
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.Blob{MIMEType: a.MediaType, Data: raw})
	}
	parts = append(parts, genai.Text(text))

	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	reply := geminiResponseText(resp)
	if reply == "" {
		return "", errors.New("gemini: empty response")
	}
	return reply, nil
}

func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String()
}

var _ ChatModel = (*GeminiChat)(nil)
