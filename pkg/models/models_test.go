package models

import (
	"context"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) != 2 {
		t.Fatalf("expected 2 configurations, got %d", len(catalog))
	}
	for _, cfg := range catalog {
		if cfg.Provider != ProviderGemini {
			t.Errorf("config %s: provider = %q, want %q", cfg.ID, cfg.Provider, ProviderGemini)
		}
		if cfg.Generation.Temperature == nil {
			t.Errorf("config %s: temperature not set", cfg.ID)
		}
	}
}

func TestFindConfig(t *testing.T) {
	catalog := DefaultCatalog()

	cfg, ok := FindConfig(catalog, "flash-creative")
	if !ok {
		t.Fatal("flash-creative not found")
	}
	if got := *cfg.Generation.Temperature; got != 1.0 {
		t.Errorf("temperature = %v, want 1.0", got)
	}

	if _, ok := FindConfig(catalog, "no-such-model"); ok {
		t.Error("expected lookup miss for unknown id")
	}
}

func TestNewChatModelUnknownProvider(t *testing.T) {
	_, err := NewChatModel(context.Background(), Config{Provider: "mystery"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestDummyChatScriptedReplies(t *testing.T) {
	d := &DummyChat{Replies: []string{"first", "second"}}
	s := d.NewSession()
	ctx := context.Background()

	for i, want := range []string{"first", "second", "echo: hello"} {
		got, err := s.Send(ctx, "hello", nil)
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if got != want {
			t.Errorf("turn %d: got %q, want %q", i, got, want)
		}
	}
}

func TestDummySessionsIndependent(t *testing.T) {
	d := &DummyChat{Replies: []string{"only"}}
	ctx := context.Background()

	a := d.NewSession()
	b := d.NewSession()

	if got, _ := a.Send(ctx, "x", nil); got != "only" {
		t.Fatalf("session a: got %q", got)
	}
	if got, _ := b.Send(ctx, "y", nil); got != "only" {
		t.Fatalf("session b should replay the script from the start, got %q", got)
	}
}
