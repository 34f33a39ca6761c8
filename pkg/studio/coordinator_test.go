package studio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/clipboard"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/gateway"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/models"
)

// stubGenerator satisfies conversation.Generator with canned results.
type stubGenerator struct{}

func (stubGenerator) RefinePrompt(context.Context, string, []assets.TransportAsset, models.Config) (gateway.RefinedPrompt, error) {
	return gateway.RefinedPrompt{Text: "refined", Intent: gateway.IntentImage}, nil
}

func (stubGenerator) RegeneratePrompt(context.Context, string, string, []assets.TransportAsset, models.Config) (gateway.RefinedPrompt, error) {
	return gateway.RefinedPrompt{Text: "varied", Intent: gateway.IntentImage}, nil
}

func (stubGenerator) SuggestPromptFromImage(context.Context, assets.TransportAsset, models.Config) (string, error) {
	return "described", nil
}

func (stubGenerator) SendChatTurn(ctx context.Context, s models.ChatSession, text string, as []assets.TransportAsset) (string, error) {
	if s == nil {
		return "", gateway.ErrNoSession
	}
	return s.Send(ctx, text, as)
}

func (stubGenerator) EditImage(context.Context, string, []assets.TransportAsset) (assets.TransportAsset, error) {
	return assets.FromBytes([]byte("edited"), "image/png"), nil
}

func (stubGenerator) GenerateImage(context.Context, string, gateway.AspectRatio) (assets.TransportAsset, error) {
	return assets.FromBytes([]byte("generated"), "image/png"), nil
}

func (stubGenerator) GenerateVideo(context.Context, string, *assets.TransportAsset) (string, error) {
	return "https://example.com/v.mp4?alt=media&key=k", nil
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	return New(Options{
		Generator: stubGenerator{},
		ChatModelFactory: func(_ context.Context, cfg models.Config) (models.ChatModel, error) {
			return &models.DummyChat{Replies: []string{"reply for " + cfg.ID}}, nil
		},
		Clipboard: &clipboard.Memory{},
		After:     func(_ time.Duration, fn func()) { fn() },
	})
}

func TestNewTopicResetsEverything(t *testing.T) {
	c := newTestCoordinator(t)

	o := c.Orchestrator(ViewAssistant)
	o.SetInput("a cat astronaut")
	require.NoError(t, o.Submit(context.Background()))
	require.NotEmpty(t, o.Timeline())

	c.HandoffImageToVideo(assets.FromBytes([]byte("img"), "image/png"))

	topic := c.NewTopic()
	assert.Equal(t, uint64(1), topic)

	for _, v := range []View{ViewAssistant, ViewEditor, ViewVideo} {
		assert.Empty(t, c.Orchestrator(v).Timeline(), "view %s must start empty", v)
	}
	_, ok := c.ConsumeVideoImage()
	assert.False(t, ok, "shared slots must be cleared")
}

func TestHandoffImageToVideoConsumeOnce(t *testing.T) {
	c := newTestCoordinator(t)

	img := assets.FromBytes([]byte("img"), "image/png")
	c.HandoffImageToVideo(img)
	assert.Equal(t, ViewVideo, c.ActiveView())

	got, ok := c.ConsumeVideoImage()
	require.True(t, ok)
	assert.Equal(t, img, got)

	require.NoError(t, c.SetActiveView(ViewEditor))
	require.NoError(t, c.SetActiveView(ViewVideo))
	_, ok = c.ConsumeVideoImage()
	assert.False(t, ok, "a second consume must find the slot empty")
}

func TestHandoffPromptDropsTextForVideo(t *testing.T) {
	c := newTestCoordinator(t)
	atts := []assets.Attachment{{Name: "ref.png", MediaType: "image/png", Data: []byte("p")}}

	require.NoError(t, c.HandoffPrompt("an epic prompt", atts, ViewVideo))
	assert.Equal(t, ViewVideo, c.ActiveView())

	h, ok := c.ConsumePromptHandoff(ViewVideo)
	require.True(t, ok)
	assert.Empty(t, h.Text, "video view must not receive prompt text")
	assert.Len(t, h.Attachments, 1)
}

func TestHandoffPromptToEditorKeepsText(t *testing.T) {
	c := newTestCoordinator(t)

	require.NoError(t, c.HandoffPrompt("an epic prompt", nil, ViewEditor))
	h, ok := c.ConsumePromptHandoff(ViewEditor)
	require.True(t, ok)
	assert.Equal(t, "an epic prompt", h.Text)

	_, ok = c.ConsumePromptHandoff(ViewVideo)
	assert.False(t, ok, "a consumed handoff must not reach other views")
}

func TestHandoffPromptRejectsAssistant(t *testing.T) {
	c := newTestCoordinator(t)
	require.Error(t, c.HandoffPrompt("p", nil, ViewAssistant))
}

func TestSessionCachedPerConfig(t *testing.T) {
	c := newTestCoordinator(t)
	ctx := context.Background()

	first, err := c.Session(ctx)
	require.NoError(t, err)
	again, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again, "same configuration must reuse the session")

	require.NoError(t, c.SelectModel(ctx, "flash-creative"))
	assert.Equal(t, "flash-creative", c.SelectedModel().ID)

	other, err := c.Session(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, other, "a configuration change must yield a fresh session")
}

func TestSelectModelUnknown(t *testing.T) {
	c := newTestCoordinator(t)
	require.Error(t, c.SelectModel(context.Background(), "nope"))
}

// recordingGenerator remembers the configuration of the last refine call.
type recordingGenerator struct {
	stubGenerator
	refineCfg models.Config
}

func (g *recordingGenerator) RefinePrompt(_ context.Context, _ string, _ []assets.TransportAsset, cfg models.Config) (gateway.RefinedPrompt, error) {
	g.refineCfg = cfg
	return gateway.RefinedPrompt{Text: "refined", Intent: gateway.IntentImage}, nil
}

func TestSelectModelReachesExistingOrchestrator(t *testing.T) {
	gen := &recordingGenerator{}
	c := New(Options{
		Generator: gen,
		ChatModelFactory: func(context.Context, models.Config) (models.ChatModel, error) {
			return &models.DummyChat{}, nil
		},
		Clipboard: &clipboard.Memory{},
		After:     func(_ time.Duration, fn func()) { fn() },
	})

	o := c.Orchestrator(ViewAssistant)
	require.NoError(t, c.SelectModel(context.Background(), "flash-creative"))

	o.SetInput("a cat astronaut")
	require.NoError(t, o.Submit(context.Background()))
	assert.Equal(t, "flash-creative", gen.refineCfg.ID,
		"a model switch must apply to orchestrators created before it")
}
