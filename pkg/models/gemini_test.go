package models

import (
	"testing"

	genai "github.com/google/generative-ai-go/genai"
)

func TestGeminiResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("hello "), genai.Text("world")},
				},
			},
		},
	}
	if got := geminiResponseText(resp); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestGeminiResponseTextEmpty(t *testing.T) {
	if got := geminiResponseText(nil); got != "" {
		t.Fatalf("nil response: got %q", got)
	}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}, nil},
	}
	if got := geminiResponseText(resp); got != "" {
		t.Fatalf("empty candidates: got %q", got)
	}
}
