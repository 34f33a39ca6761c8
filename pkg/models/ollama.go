package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

// ---------------------------- Ollama -----------------------------------------

// OllamaChat creates chat sessions against a local Ollama daemon.
type OllamaChat struct {
	Client *ollama.Client
	Cfg    Config
}

// NewOllamaChat reads OLLAMA_HOST from the environment, defaulting to
// the local daemon address.
func NewOllamaChat(cfg Config) (*OllamaChat, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	return &OllamaChat{Client: ollama.NewClient(u, httpClient), Cfg: cfg}, nil
}

func (o *OllamaChat) NewSession() ChatSession {
	return &ollamaSession{client: o.Client, cfg: o.Cfg}
}

type ollamaSession struct {
	client  *ollama.Client
	cfg     Config
	history []ollama.Message
}

func (s *ollamaSession) Send(ctx context.Context, text string, as []assets.TransportAsset) (string, error) {
	msg := ollama.Message{Role: "user", Content: text}
	for _, a := range as {
		raw, err := a.Decode()
		if err != nil {
			return "", err
		}
		msg.Images = append(msg.Images, ollama.ImageData(raw))
	}
	s.history = append(s.history, msg)

	stream := false
	req := &ollama.ChatRequest{
		Model:    s.cfg.ModelID,
		Messages: s.history,
		Stream:   &stream,
	}
	if t, ok := temperature(s.cfg); ok {
		req.Options = map[string]any{"temperature": float64(t)}
	}

	var reply strings.Builder
	err := s.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return "", err
	}

	s.history = append(s.history, ollama.Message{Role: "assistant", Content: reply.String()})
	return reply.String(), nil
}

var _ ChatModel = (*OllamaChat)(nil)
