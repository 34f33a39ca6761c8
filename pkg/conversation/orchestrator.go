package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/clipboard"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/gateway"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/models"
)

// Mode selects which generation operation a submission maps to.
type Mode string

const (
	ModePromptEngineer Mode = "prompt-engineer"
	ModeCreateImage    Mode = "create-image"
	ModeAIDialog       Mode = "ai-dialog"
	ModeEditImage      Mode = "edit-image"
	ModeGenerateVideo  Mode = "generate-video"
)

const errMessagePrefix = "Maaf, terjadi kesalahan: "

// copyAckDuration is how long the copy acknowledgment stays visible.
const copyAckDuration = 2 * time.Second

var (
	// ErrValidation is returned when a submission is rejected before
	// any request is sent.
	ErrValidation = errors.New("invalid submission")

	// ErrSendInFlight is returned when a send is attempted while one is
	// already outstanding on the same path.
	ErrSendInFlight = errors.New("a request is already in flight")
)

// Generator is the slice of the gateway the orchestrator dispatches to.
// *gateway.Gateway satisfies it.
type Generator interface {
	RefinePrompt(ctx context.Context, idea string, as []assets.TransportAsset, cfg models.Config) (gateway.RefinedPrompt, error)
	RegeneratePrompt(ctx context.Context, originalIdea, previousPrompt string, as []assets.TransportAsset, cfg models.Config) (gateway.RefinedPrompt, error)
	SuggestPromptFromImage(ctx context.Context, asset assets.TransportAsset, cfg models.Config) (string, error)
	SendChatTurn(ctx context.Context, session models.ChatSession, text string, as []assets.TransportAsset) (string, error)
	EditImage(ctx context.Context, prompt string, as []assets.TransportAsset) (assets.TransportAsset, error)
	GenerateImage(ctx context.Context, prompt string, ratio gateway.AspectRatio) (assets.TransportAsset, error)
	GenerateVideo(ctx context.Context, prompt string, ref *assets.TransportAsset) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	Generator Generator
	// Config is passed to every operation that takes a model
	// configuration.
	Config models.Config
	// Session backs ai-dialog turns; may be nil until one is attached.
	Session models.ChatSession
	// Mode is the initial generation mode.
	Mode Mode
	// AttachmentLimit bounds the pending attachment set. 0 = unbounded.
	AttachmentLimit int
	Clipboard       clipboard.Clipboard
	Logger          *slog.Logger
	// After schedules delayed callbacks; tests inject a synchronous one.
	After func(d time.Duration, fn func())
}

// Orchestrator owns one conversation timeline and its submission state
// machine. The timeline is mutated only by its own methods; one primary
// send may be outstanding at a time, while per-message regenerations
// run independently.
type Orchestrator struct {
	mu       sync.Mutex
	gen      Generator
	cfg      models.Config
	session  models.ChatSession
	mode     Mode
	input    string
	aspect   gateway.AspectRatio
	atts     *assets.Set
	timeline []*Message
	nextID   uint64
	sending  bool
	lastErr  string
	copied   map[uint64]bool
	clip     clipboard.Clipboard
	log      *slog.Logger
	after    func(time.Duration, func())

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an orchestrator with an empty timeline.
func New(opts Options) *Orchestrator {
	if opts.Mode == "" {
		opts.Mode = ModeAIDialog
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.After == nil {
		opts.After = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		gen:     opts.Generator,
		cfg:     opts.Config,
		session: opts.Session,
		mode:    opts.Mode,
		aspect:  gateway.AspectSquare,
		atts:    assets.NewSet(opts.AttachmentLimit),
		copied:  make(map[uint64]bool),
		clip:    opts.Clipboard,
		log:     opts.Logger,
		after:   opts.After,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close cancels in-flight work. Results arriving afterwards are
// discarded instead of being applied to the timeline.
func (o *Orchestrator) Close() { o.cancel() }

// SetMode switches the generation mode. Entering create-image clears
// any pending attachments, releasing their previews.
func (o *Orchestrator) SetMode(mode Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if mode == ModeCreateImage && o.mode != ModeCreateImage {
		o.atts.Clear()
	}
	o.mode = mode
}

// Mode returns the current generation mode.
func (o *Orchestrator) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// SetInput replaces the pending input text.
func (o *Orchestrator) SetInput(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = text
}

// Input returns the pending input text.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// SetAspectRatio selects the aspect ratio for image generation.
func (o *Orchestrator) SetAspectRatio(r gateway.AspectRatio) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if r.Valid() {
		o.aspect = r
	}
}

// SetSession attaches the chat session backing ai-dialog turns.
func (o *Orchestrator) SetSession(s models.ChatSession) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = s
}

// SetConfig switches the model configuration. Subsequent generation
// calls use it; in-flight requests keep the one they started with.
func (o *Orchestrator) SetConfig(cfg models.Config) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg = cfg
}

// Attachments exposes the pending attachment set. The set is guarded by
// the orchestrator; callers must not retain it across goroutines.
func (o *Orchestrator) Attachments() *assets.Set {
	return o.atts
}

// AddAttachments appends pending attachments, truncating to capacity.
func (o *Orchestrator) AddAttachments(atts []assets.Attachment, previews []assets.Releaser) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.atts.Add(atts, previews)
}

// Timeline returns a point-in-time copy of the ordered messages.
// Regeneration mutates messages in place under the lock, so callers
// see value snapshots rather than the live structs.
func (o *Orchestrator) Timeline() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.timeline))
	for i, m := range o.timeline {
		out[i] = *m
	}
	return out
}

// Sending reports whether a primary send is outstanding.
func (o *Orchestrator) Sending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sending
}

// LastError returns the error text of the most recent failure, or "".
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Copied reports whether the copy acknowledgment for a message is
// still showing.
func (o *Orchestrator) Copied(id uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copied[id]
}

// Submit runs one submission through the machine: validate, append the
// user turn optimistically, clear the composer, dispatch per mode, and
// merge the result or failure back into the timeline. The user turn
// stays even when the request fails.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.sending {
		o.mu.Unlock()
		return ErrSendInFlight
	}

	text := strings.TrimSpace(o.input)
	if err := validate(o.mode, text, o.atts.Len()); err != nil {
		o.lastErr = err.Error()
		o.mu.Unlock()
		return err
	}

	mode := o.mode
	aspect := o.aspect
	cfg := o.cfg
	items, previews := o.atts.Take()
	o.input = ""
	o.lastErr = ""
	o.sending = true
	o.appendLocked(newUserTurn(o.nextMsgID(), text, previews))
	o.mu.Unlock()

	rctx, done := o.requestContext(ctx)
	reply, err := o.dispatch(rctx, mode, text, aspect, cfg, items)
	done()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.sending = false
	if o.ctx.Err() != nil {
		return o.ctx.Err()
	}
	if err != nil {
		o.failLocked(err)
		return err
	}
	o.appendLocked(reply)
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, mode Mode, text string, aspect gateway.AspectRatio, cfg models.Config, items []assets.Attachment) (*Message, error) {
	transport, err := assets.ConvertAll(ctx, items)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModePromptEngineer:
		rp, err := o.gen.RefinePrompt(ctx, text, transport, cfg)
		if err != nil {
			return nil, err
		}
		return newRefinedPrompt(o.allocateID(), rp, text, items), nil

	case ModeCreateImage:
		img, err := o.gen.GenerateImage(ctx, text, aspect)
		if err != nil {
			return nil, err
		}
		return newGeneratedImage(o.allocateID(), text, img), nil

	case ModeAIDialog:
		o.mu.Lock()
		session := o.session
		o.mu.Unlock()
		reply, err := o.gen.SendChatTurn(ctx, session, text, transport)
		if err != nil {
			return nil, err
		}
		return newAssistantTurn(o.allocateID(), reply), nil

	case ModeEditImage:
		img, err := o.gen.EditImage(ctx, text, transport)
		if err != nil {
			return nil, err
		}
		return newGeneratedImage(o.allocateID(), text, img), nil

	case ModeGenerateVideo:
		var ref *assets.TransportAsset
		if len(transport) > 0 {
			ref = &transport[0]
		}
		uri, err := o.gen.GenerateVideo(ctx, text, ref)
		if err != nil {
			return nil, err
		}
		return newGeneratedVideo(o.allocateID(), text, uri), nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, mode)
}

// Regenerate replaces the text and intent of an existing refined-prompt
// message with a fresh variation. The stored originals never change;
// on failure only the busy flag is cleared and the error surfaced.
func (o *Orchestrator) Regenerate(ctx context.Context, id uint64) error {
	o.mu.Lock()
	msg := o.findLocked(id)
	if msg == nil {
		o.mu.Unlock()
		return fmt.Errorf("message %d not found", id)
	}
	_, originalPrompt, originals, ok := msg.Refined()
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("message %d is not a refined prompt", id)
	}
	if msg.Refreshing {
		o.mu.Unlock()
		return ErrSendInFlight
	}
	msg.Refreshing = true
	previousPrompt := msg.Text
	cfg := o.cfg
	o.mu.Unlock()

	rctx, done := o.requestContext(ctx)
	rp, err := o.regenerateCall(rctx, originalPrompt, previousPrompt, cfg, originals)
	done()

	o.mu.Lock()
	defer o.mu.Unlock()
	msg.Refreshing = false
	if o.ctx.Err() != nil {
		return o.ctx.Err()
	}
	if err != nil {
		o.lastErr = err.Error()
		return err
	}
	msg.Text = rp.Text
	msg.intent = rp.Intent
	return nil
}

func (o *Orchestrator) regenerateCall(ctx context.Context, originalPrompt, previousPrompt string, cfg models.Config, originals []assets.Attachment) (gateway.RefinedPrompt, error) {
	transport, err := assets.ConvertAll(ctx, originals)
	if err != nil {
		return gateway.RefinedPrompt{}, err
	}
	return o.gen.RegeneratePrompt(ctx, originalPrompt, previousPrompt, transport, cfg)
}

// SuggestPrompt describes an attachment as a generation prompt and
// places the suggestion into the composer input.
func (o *Orchestrator) SuggestPrompt(ctx context.Context, att assets.Attachment) error {
	transport, err := assets.Convert(ctx, att)
	if err != nil {
		return err
	}
	o.mu.Lock()
	cfg := o.cfg
	o.mu.Unlock()
	rctx, done := o.requestContext(ctx)
	suggestion, err := o.gen.SuggestPromptFromImage(rctx, transport, cfg)
	done()
	if err != nil {
		o.mu.Lock()
		o.lastErr = err.Error()
		o.mu.Unlock()
		return err
	}
	o.mu.Lock()
	o.input = suggestion
	o.mu.Unlock()
	return nil
}

// CopyMessage writes a message's text to the clipboard and arms the
// 2 second acknowledgment. Clipboard failure is logged, never fatal.
func (o *Orchestrator) CopyMessage(id uint64) error {
	o.mu.Lock()
	msg := o.findLocked(id)
	var text string
	if msg != nil {
		text = msg.Text
	}
	o.mu.Unlock()
	if msg == nil {
		return fmt.Errorf("message %d not found", id)
	}

	if err := o.clip.Write(text); err != nil {
		o.log.Warn("clipboard write failed", "error", err)
		return err
	}

	o.mu.Lock()
	o.copied[id] = true
	o.mu.Unlock()

	o.after(copyAckDuration, func() {
		o.mu.Lock()
		delete(o.copied, id)
		o.mu.Unlock()
	})
	return nil
}

// Reset discards the timeline and composer state, releasing every
// preview the timeline owned.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range o.timeline {
		m.releasePreviews()
	}
	o.timeline = nil
	o.atts.Clear()
	o.input = ""
	o.lastErr = ""
	o.copied = make(map[uint64]bool)
}

// requestContext derives a request context cancelled when either the
// caller's context or the orchestrator's lifetime ends.
func (o *Orchestrator) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(o.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (o *Orchestrator) appendLocked(m *Message) {
	o.timeline = append(o.timeline, m)
}

func (o *Orchestrator) failLocked(err error) {
	o.lastErr = err.Error()
	o.appendLocked(newAssistantTurn(o.nextMsgID(), errMessagePrefix+err.Error()))
}

func (o *Orchestrator) findLocked(id uint64) *Message {
	for _, m := range o.timeline {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// nextMsgID must be called with the lock held.
func (o *Orchestrator) nextMsgID() uint64 {
	o.nextID++
	return o.nextID
}

// allocateID takes the lock itself.
func (o *Orchestrator) allocateID() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextMsgID()
}

func validate(mode Mode, text string, attachments int) error {
	switch mode {
	case ModeCreateImage:
		if text == "" {
			return fmt.Errorf("%w: image generation needs a text prompt", ErrValidation)
		}
	default:
		if text == "" && attachments == 0 {
			return fmt.Errorf("%w: enter text or attach an image", ErrValidation)
		}
	}
	return nil
}
