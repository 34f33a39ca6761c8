// Package studio is the top-level coordinator: it routes between the
// assistant, image-editor and video views, hands artifacts from one
// view to another, resets everything on a new topic, and manages model
// configuration selection with its cached chat sessions.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/cache"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/clipboard"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/conversation"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/models"
)

// View identifies one of the three studio surfaces.
type View string

const (
	// ViewAssistant is the prompt assistant (prompt-engineer,
	// create-image and ai-dialog modes).
	ViewAssistant View = "assistant"
	// ViewEditor is the image editing view.
	ViewEditor View = "banana"
	// ViewVideo is the video generation view.
	ViewVideo View = "veo"
)

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	switch v {
	case ViewAssistant, ViewEditor, ViewVideo:
		return true
	}
	return false
}

// assistantAttachmentLimit bounds the assistant composer.
const assistantAttachmentLimit = 6

// defaultSessionTTL expires idle cached chat sessions.
const defaultSessionTTL = 30 * time.Minute

// PromptHandoff carries a refined prompt from the assistant to a
// generation view. Text is dropped when the target is the video view.
type PromptHandoff struct {
	Text        string
	Attachments []assets.Attachment
	Target      View
}

// Options configures a Coordinator.
type Options struct {
	Generator conversation.Generator
	// Catalog is the selectable model set. Default models.DefaultCatalog().
	Catalog []models.Config
	// ChatModelFactory builds the backend for a selected configuration.
	// Default models.NewChatModel.
	ChatModelFactory func(ctx context.Context, cfg models.Config) (models.ChatModel, error)
	Clipboard        clipboard.Clipboard
	// PrefStore backs the theme preference. Default in-memory.
	PrefStore PrefStore
	Logger    *slog.Logger
	// SessionTTL expires cached chat sessions. Default 30m.
	SessionTTL time.Duration
	// After schedules delayed callbacks; tests inject a synchronous one.
	After func(d time.Duration, fn func())
}

// Coordinator holds the active view, the topic counter, the shared
// artifact slots, and one orchestrator per view keyed to the current
// topic.
type Coordinator struct {
	mu sync.Mutex

	gen       conversation.Generator
	clip      clipboard.Clipboard
	log       *slog.Logger
	after     func(time.Duration, func())
	factory   func(context.Context, models.Config) (models.ChatModel, error)
	active    View
	topic     uint64
	views     map[View]*conversation.Orchestrator
	imageSlot *assets.TransportAsset
	prompt    *PromptHandoff

	catalog  []models.Config
	selected models.Config
	sessions *cache.LRU[models.ChatSession]

	history *History
	prefs   *Preferences
}

// New creates a coordinator showing the assistant view.
func New(opts Options) *Coordinator {
	if len(opts.Catalog) == 0 {
		opts.Catalog = models.DefaultCatalog()
	}
	if opts.ChatModelFactory == nil {
		opts.ChatModelFactory = models.NewChatModel
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if opts.PrefStore == nil {
		opts.PrefStore = &MemoryPrefStore{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.After == nil {
		opts.After = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}

	c := &Coordinator{
		gen:      opts.Generator,
		clip:     opts.Clipboard,
		log:      opts.Logger,
		after:    opts.After,
		factory:  opts.ChatModelFactory,
		active:   ViewAssistant,
		views:    make(map[View]*conversation.Orchestrator),
		catalog:  opts.Catalog,
		selected: opts.Catalog[0],
		sessions: cache.NewLRU[models.ChatSession](len(opts.Catalog), opts.SessionTTL),
		history:  NewHistory(opts.Clipboard, opts.After),
		prefs:    NewPreferences(opts.PrefStore, opts.Logger),
	}
	return c
}

// History returns the session history list.
func (c *Coordinator) History() *History { return c.history }

// Preferences returns the theme preference holder.
func (c *Coordinator) Preferences() *Preferences { return c.prefs }

// ActiveView returns the currently shown view.
func (c *Coordinator) ActiveView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActiveView switches the shown view.
func (c *Coordinator) SetActiveView(v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view %q", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = v
	return nil
}

// Topic returns the current topic generation.
func (c *Coordinator) Topic() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topic
}

// Orchestrator returns the timeline owner for a view, creating it on
// first use. Each orchestrator lives until the next topic.
func (c *Coordinator) Orchestrator(v View) *conversation.Orchestrator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orchestratorLocked(v)
}

func (c *Coordinator) orchestratorLocked(v View) *conversation.Orchestrator {
	if o, ok := c.views[v]; ok {
		return o
	}
	o := conversation.New(conversation.Options{
		Generator:       c.gen,
		Config:          c.selected,
		Mode:            initialMode(v),
		AttachmentLimit: attachmentLimit(v),
		Clipboard:       c.clip,
		Logger:          c.log,
		After:           c.after,
	})
	c.views[v] = o
	return o
}

func initialMode(v View) conversation.Mode {
	switch v {
	case ViewEditor:
		return conversation.ModeEditImage
	case ViewVideo:
		return conversation.ModeGenerateVideo
	default:
		return conversation.ModePromptEngineer
	}
}

func attachmentLimit(v View) int {
	if v == ViewAssistant {
		return assistantAttachmentLimit
	}
	return 0
}

// NewTopic discards every view's timeline, clears the shared artifact
// slots and the cached chat sessions, and bumps the topic counter.
func (c *Coordinator) NewTopic() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	for v, o := range c.views {
		o.Close()
		delete(c.views, v)
	}
	c.imageSlot = nil
	c.prompt = nil
	c.sessions.Clear()
	c.topic++
	return c.topic
}

// HandoffImageToVideo shares a generated image with the video view as
// its reference image and switches to it.
func (c *Coordinator) HandoffImageToVideo(img assets.TransportAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imageSlot = &img
	c.active = ViewVideo
}

// ConsumeVideoImage takes the shared reference image, clearing the slot
// so re-entering the view does not replay it.
func (c *Coordinator) ConsumeVideoImage() (assets.TransportAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.imageSlot == nil {
		return assets.TransportAsset{}, false
	}
	img := *c.imageSlot
	c.imageSlot = nil
	return img, true
}

// HandoffPrompt shares a refined prompt with a generation view and
// switches to it. The video view receives the attachments but not the
// prompt text.
func (c *Coordinator) HandoffPrompt(text string, atts []assets.Attachment, target View) error {
	if target != ViewEditor && target != ViewVideo {
		return fmt.Errorf("cannot hand a prompt to view %q", target)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if target == ViewVideo {
		text = ""
	}
	c.prompt = &PromptHandoff{Text: text, Attachments: atts, Target: target}
	c.active = target
	return nil
}

// ConsumePromptHandoff takes the shared prompt when it targets view,
// clearing the slot. Consuming twice yields nothing the second time.
func (c *Coordinator) ConsumePromptHandoff(view View) (PromptHandoff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil || c.prompt.Target != view {
		return PromptHandoff{}, false
	}
	h := *c.prompt
	c.prompt = nil
	return h, true
}

// Catalog returns the selectable model configurations.
func (c *Coordinator) Catalog() []models.Config {
	out := make([]models.Config, len(c.catalog))
	copy(out, c.catalog)
	return out
}

// SelectedModel returns the active configuration.
func (c *Coordinator) SelectedModel() models.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SelectModel switches the active configuration, pushes it into every
// live orchestrator, and attaches its chat session to the assistant
// orchestrator. Sessions are cached per
// configuration ID; a configuration change therefore yields a fresh
// session with no history carried over.
func (c *Coordinator) SelectModel(ctx context.Context, id string) error {
	cfg, ok := models.FindConfig(c.catalog, id)
	if !ok {
		return fmt.Errorf("unknown model configuration %q", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.sessionLocked(ctx, cfg)
	if err != nil {
		return err
	}
	c.selected = cfg
	for _, o := range c.views {
		o.SetConfig(cfg)
	}
	c.orchestratorLocked(ViewAssistant).SetSession(session)
	return nil
}

// Session returns the live chat session for the active configuration,
// creating and caching it on first use.
func (c *Coordinator) Session(ctx context.Context) (models.ChatSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked(ctx, c.selected)
}

func (c *Coordinator) sessionLocked(ctx context.Context, cfg models.Config) (models.ChatSession, error) {
	if s, ok := c.sessions.Get(cfg.ID); ok {
		return s, nil
	}
	model, err := c.factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model %s: %w", cfg.ID, err)
	}
	s := model.NewSession()
	c.sessions.Set(cfg.ID, s)
	c.log.Debug("chat session created", "config", cfg.ID)
	return s, nil
}
