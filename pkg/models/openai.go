package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

// OpenAIChat creates chat sessions against the OpenAI chat-completions
// API. History lives inside the session handle, since the API itself is
// stateless.
type OpenAIChat struct {
	Client *openai.Client
	Cfg    Config
}

// NewOpenAIChat reads OPENAI_API_KEY (falling back to OPENAI_KEY) from
// the environment.
func NewOpenAIChat(cfg Config) *OpenAIChat {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY")
	}
	return &OpenAIChat{Client: openai.NewClient(apiKey), Cfg: cfg}
}

func (o *OpenAIChat) NewSession() ChatSession {
	return &openaiSession{client: o.Client, cfg: o.Cfg}
}

type openaiSession struct {
	client  *openai.Client
	cfg     Config
	history []openai.ChatCompletionMessage
}

func (s *openaiSession) Send(ctx context.Context, text string, as []assets.TransportAsset) (string, error) {
	if len(as) == 0 {
		s.history = append(s.history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		})
	} else {
		parts := []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: text,
		}}
		for _, a := range as {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", a.MediaType, a.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		s.history = append(s.history, openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    s.cfg.ModelID,
		Messages: s.history,
	}
	if t, ok := temperature(s.cfg); ok {
		req.Temperature = t
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// Drop the failed turn so a retry does not duplicate it.
		s.history = s.history[:len(s.history)-1]
		return "", err
	}
	if len(resp.Choices) == 0 {
		s.history = s.history[:len(s.history)-1]
		return "", errors.New("no response from OpenAI")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	return reply, nil
}

var _ ChatModel = (*OpenAIChat)(nil)
