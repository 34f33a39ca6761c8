// Package gateway is the typed façade over the generative backends: prompt
// refinement with a structured response schema, chat turns, image editing,
// image generation and long-running video generation.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	genai "github.com/google/generative-ai-go/genai"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/models"
)

// AspectRatio selects the output shape for image generation.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

// Valid reports whether r is one of the supported ratios.
func (r AspectRatio) Valid() bool {
	switch r {
	case AspectSquare, AspectLandscape, AspectPortrait:
		return true
	}
	return false
}

// Options configures a Gateway.
type Options struct {
	// APIKey is appended to video download locators and sent on REST
	// calls.
	APIKey string
	// BaseURL overrides the REST endpoint, mainly for tests.
	BaseURL string
	// EditModel handles image editing. Default gemini-2.5-flash-image-preview.
	EditModel string
	// ImageModel handles image generation. Default imagen-4.0-generate-001.
	ImageModel string
	// VideoModel handles video generation. Default veo-3.0-generate-preview.
	VideoModel string
	// PollInterval is the wait between video operation status checks.
	// Default 10s.
	PollInterval time.Duration
	// PollTimeout bounds the whole video poll loop. Default 10m.
	PollTimeout time.Duration
	// HTTPClient is used for REST calls when set.
	HTTPClient *http.Client
	// Logger receives poll progress. Default slog.Default().
	Logger *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.EditModel == "" {
		o.EditModel = "gemini-2.5-flash-image-preview"
	}
	if o.ImageModel == "" {
		o.ImageModel = "imagen-4.0-generate-001"
	}
	if o.VideoModel == "" {
		o.VideoModel = "veo-3.0-generate-preview"
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 10 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Gateway dispatches generation requests. It is stateless apart from
// its clients; every call is an independent request/response cycle.
type Gateway struct {
	client *genai.Client
	rest   *restClient
	opts   Options
	log    *slog.Logger
}

// New builds a Gateway over an existing genai client.
func New(client *genai.Client, opts Options) *Gateway {
	opts.applyDefaults()
	return &Gateway{
		client: client,
		rest:   newRESTClient(opts.BaseURL, opts.APIKey, opts.HTTPClient),
		opts:   opts,
		log:    opts.Logger,
	}
}

// refineSchema is the structured-output contract for prompt refinement.
var refineSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"prompt": {
			Type:        genai.TypeString,
			Description: "The detailed, generated prompt for the AI model.",
		},
		"intent": {
			Type:        genai.TypeString,
			Description: "The classified intent of the prompt, either 'IMAGE' or 'VIDEO'.",
		},
	},
	Required: []string{"prompt", "intent"},
}

// RefinePrompt turns a raw idea plus optional reference images into a
// detailed prompt with a classified intent.
func (g *Gateway) RefinePrompt(ctx context.Context, idea string, as []assets.TransportAsset, cfg models.Config) (rp RefinedPrompt, err error) {
	defer func(start time.Time) { observe("refine_prompt", start, err) }(time.Now())

	raw, err := g.generateStructured(ctx, cfg, refineSystemInstruction, refineUserMessage(idea), as)
	if err != nil {
		return RefinedPrompt{}, err
	}
	return parseRefinedPrompt(raw, refineFallbackText)
}

// RegeneratePrompt produces a distinct variation of a previously
// refined prompt. The variation contract lives in the instruction; the
// caller cannot enforce it.
func (g *Gateway) RegeneratePrompt(ctx context.Context, originalIdea, previousPrompt string, as []assets.TransportAsset, cfg models.Config) (rp RefinedPrompt, err error) {
	defer func(start time.Time) { observe("regenerate_prompt", start, err) }(time.Now())

	raw, err := g.generateStructured(ctx, cfg, regenerateSystemInstruction, regenerateUserMessage(originalIdea, previousPrompt), as)
	if err != nil {
		return RefinedPrompt{}, err
	}
	return parseRefinedPrompt(raw, regenerateFallbackText)
}

// SuggestPromptFromImage asks the model to describe one image as a
// generation prompt. API errors surface verbatim.
func (g *Gateway) SuggestPromptFromImage(ctx context.Context, asset assets.TransportAsset, cfg models.Config) (s string, err error) {
	defer func(start time.Time) { observe("suggest_prompt", start, err) }(time.Now())

	model := g.generativeModel(cfg)
	parts, err := buildParts(suggestFromImageInstruction, []assets.TransportAsset{asset})
	if err != nil {
		return "", err
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("suggest prompt: %w", err)
	}
	return responseText(resp), nil
}

// SendChatTurn delegates one turn to a live chat session.
func (g *Gateway) SendChatTurn(ctx context.Context, session models.ChatSession, text string, as []assets.TransportAsset) (s string, err error) {
	defer func(start time.Time) { observe("chat_turn", start, err) }(time.Now())

	if session == nil {
		return "", ErrNoSession
	}
	return session.Send(ctx, text, as)
}

// EditImage applies a textual edit instruction to one or more source
// images and returns the first inline image in the reply.
func (g *Gateway) EditImage(ctx context.Context, prompt string, as []assets.TransportAsset) (out assets.TransportAsset, err error) {
	defer func(start time.Time) { observe("edit_image", start, err) }(time.Now())

	model := g.client.GenerativeModel(g.opts.EditModel)
	parts, err := buildParts(prompt, as)
	if err != nil {
		return assets.TransportAsset{}, err
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return assets.TransportAsset{}, fmt.Errorf("edit image: %w", err)
	}
	edited, ok := extractInlineImage(resp)
	if !ok {
		return assets.TransportAsset{}, fmt.Errorf("%w: no image part in edit reply", ErrGenerationFailed)
	}
	return edited, nil
}

// GenerateImage produces one PNG image at the requested aspect ratio.
func (g *Gateway) GenerateImage(ctx context.Context, prompt string, ratio AspectRatio) (out assets.TransportAsset, err error) {
	defer func(start time.Time) { observe("generate_image", start, err) }(time.Now())

	if !ratio.Valid() {
		ratio = AspectSquare
	}
	resp, err := g.rest.predict(ctx, g.opts.ImageModel, predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:    1,
			AspectRatio:    string(ratio),
			OutputMIMEType: "image/png",
		},
	})
	if err != nil {
		return assets.TransportAsset{}, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return assets.TransportAsset{}, fmt.Errorf("%w: no image returned", ErrGenerationFailed)
	}
	p := resp.Predictions[0]
	mediaType := p.MIMEType
	if mediaType == "" {
		mediaType = "image/png"
	}
	return assets.TransportAsset{Data: p.BytesBase64Encoded, MediaType: mediaType}, nil
}

func (g *Gateway) generativeModel(cfg models.Config) *genai.GenerativeModel {
	model := g.client.GenerativeModel(cfg.ModelID)
	if t := cfg.Generation.Temperature; t != nil {
		model.SetTemperature(*t)
	}
	return model
}

func (g *Gateway) generateStructured(ctx context.Context, cfg models.Config, system, user string, as []assets.TransportAsset) (string, error) {
	model := g.generativeModel(cfg)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = refineSchema

	parts, err := buildParts(user, as)
	if err != nil {
		return "", err
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("refine prompt: %w", err)
	}
	return responseText(resp), nil
}

// buildParts assembles image blobs followed by the text part.
func buildParts(text string, as []assets.TransportAsset) ([]genai.Part, error) {
	parts := make([]genai.Part, 0, len(as)+1)
	for _, a := range as {
		raw, err := a.Decode()
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.Blob{MIMEType: a.MediaType, Data: raw})
	}
	return append(parts, genai.Text(text)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out += string(t)
			}
		}
	}
	return out
}

// extractInlineImage scans the candidates for the first inline image
// blob and re-encodes it as a transport asset.
func extractInlineImage(resp *genai.GenerateContentResponse) (assets.TransportAsset, bool) {
	if resp == nil {
		return assets.TransportAsset{}, false
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if b, ok := part.(genai.Blob); ok {
				return assets.FromBytes(b.Data, b.MIMEType), true
			}
		}
	}
	return assets.TransportAsset{}, false
}
