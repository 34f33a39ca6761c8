package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/conversation"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/download"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/gateway"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/studio"
)

type attachmentJSON struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Data      string `json:"data"`
}

func (a attachmentJSON) attachment() (assets.Attachment, error) {
	raw, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return assets.Attachment{}, err
	}
	return assets.Attachment{Name: a.Name, MediaType: a.MediaType, Data: raw}, nil
}

type messageJSON struct {
	ID             uint64 `json:"id"`
	Role           string `json:"role"`
	Kind           string `json:"kind"`
	Text           string `json:"text"`
	Intent         string `json:"intent,omitempty"`
	OriginalPrompt string `json:"originalPrompt,omitempty"`
	Image          string `json:"image,omitempty"`
	VideoURI       string `json:"videoUri,omitempty"`
	Refreshing     bool   `json:"refreshing,omitempty"`
	Copied         bool   `json:"copied,omitempty"`
}

func renderMessage(o *conversation.Orchestrator, m conversation.Message) messageJSON {
	out := messageJSON{
		ID:         m.ID,
		Role:       string(m.Role),
		Kind:       string(m.Kind),
		Text:       m.Text,
		Refreshing: m.Refreshing,
		Copied:     o.Copied(m.ID),
	}
	if intent, original, _, ok := m.Refined(); ok {
		out.Intent = string(intent)
		out.OriginalPrompt = original
	}
	if img, ok := m.GeneratedImage(); ok {
		out.Image = img.DataURL()
	}
	if uri, ok := m.VideoURI(); ok {
		out.VideoURI = uri
	}
	return out
}

func renderTimeline(o *conversation.Orchestrator) []messageJSON {
	tl := o.Timeline()
	out := make([]messageJSON, len(tl))
	for i, m := range tl {
		out[i] = renderMessage(o, m)
	}
	return out
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}
	o := s.coord.Orchestrator(v)
	writeJSON(w, http.StatusOK, map[string]any{
		"topic":    s.coord.Topic(),
		"sending":  o.Sending(),
		"error":    o.LastError(),
		"timeline": renderTimeline(o),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}

	var body struct {
		Text        string           `json:"text"`
		Mode        string           `json:"mode"`
		AspectRatio string           `json:"aspectRatio"`
		Attachments []attachmentJSON `json:"attachments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	o := s.coord.Orchestrator(v)
	if body.Mode != "" {
		o.SetMode(conversation.Mode(body.Mode))
	}
	if body.AspectRatio != "" {
		o.SetAspectRatio(gateway.AspectRatio(body.AspectRatio))
	}
	if len(body.Attachments) > 0 {
		atts := make([]assets.Attachment, 0, len(body.Attachments))
		for _, a := range body.Attachments {
			att, err := a.attachment()
			if err != nil {
				badRequest(w, "invalid attachment payload")
				return
			}
			atts = append(atts, att)
		}
		o.AddAttachments(atts, nil)
	}
	o.SetInput(body.Text)

	if v == studio.ViewAssistant && o.Mode() == conversation.ModeAIDialog {
		session, err := s.coord.Session(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		o.SetSession(session)
	}

	if err := o.Submit(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeline": renderTimeline(o)})
}

func (s *Server) messageID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid message id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}
	o := s.coord.Orchestrator(v)
	if err := o.Regenerate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeline": renderTimeline(o)})
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}
	if err := s.coord.Orchestrator(v).CopyMessage(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}

	for _, m := range s.coord.Orchestrator(v).Timeline() {
		if m.ID != id {
			continue
		}
		img, ok := m.GeneratedImage()
		if !ok {
			badRequest(w, "message carries no downloadable image")
			return
		}
		raw, err := img.Decode()
		if err != nil {
			writeError(w, err)
			return
		}
		name := download.Filename(download.KindImage, img.MediaType, time.Now())
		w.Header().Set("Content-Type", img.MediaType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Write(raw)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "message not found"})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}
	var body attachmentJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	att, err := body.attachment()
	if err != nil {
		badRequest(w, "invalid attachment payload")
		return
	}
	o := s.coord.Orchestrator(v)
	if err := o.SuggestPrompt(r.Context(), att); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": o.Input()})
}

func (s *Server) handleNewTopic(w http.ResponseWriter, r *http.Request) {
	topic := s.coord.NewTopic()
	writeJSON(w, http.StatusOK, map[string]uint64{"topic": topic})
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var body struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.coord.SetActiveView(studio.View(body.View)); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"view": body.View})
}

func (s *Server) handleHandoffImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data      string `json:"data"`
		MediaType string `json:"mediaType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	s.coord.HandoffImageToVideo(assets.TransportAsset{Data: body.Data, MediaType: body.MediaType})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHandoffPrompt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text        string           `json:"text"`
		Target      string           `json:"target"`
		Attachments []attachmentJSON `json:"attachments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	atts := make([]assets.Attachment, 0, len(body.Attachments))
	for _, a := range body.Attachments {
		att, err := a.attachment()
		if err != nil {
			badRequest(w, "invalid attachment payload")
			return
		}
		atts = append(atts, att)
	}
	if err := s.coord.HandoffPrompt(body.Text, atts, studio.View(body.Target)); err != nil {
		badRequest(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConsumeHandoff delivers any pending shared artifact into the
// view: a prompt handoff fills the composer and attachment set, and the
// video view additionally receives the shared reference image as an
// attachment. The slots clear on consume, so a repeat call applies
// nothing.
func (s *Server) handleConsumeHandoff(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(r)
	if !ok {
		badRequest(w, "unknown view")
		return
	}
	o := s.coord.Orchestrator(v)

	var applied struct {
		Prompt      string `json:"prompt,omitempty"`
		Attachments int    `json:"attachments"`
	}
	if h, ok := s.coord.ConsumePromptHandoff(v); ok {
		if h.Text != "" {
			o.SetInput(h.Text)
			applied.Prompt = h.Text
		}
		applied.Attachments += o.AddAttachments(h.Attachments, nil)
	}
	if v == studio.ViewVideo {
		if img, ok := s.coord.ConsumeVideoImage(); ok {
			raw, err := img.Decode()
			if err != nil {
				writeError(w, err)
				return
			}
			att := assets.Attachment{
				Name:      "reference." + img.Subtype(),
				MediaType: img.MediaType,
				Data:      raw,
			}
			applied.Attachments += o.AddAttachments([]assets.Attachment{att}, nil)
		}
	}
	writeJSON(w, http.StatusOK, applied)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.History().Items())
}

func (s *Server) handleHistoryAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	id := s.coord.History().Add(body.Text)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleHistoryUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Text   *string `json:"text"`
		Pinned *bool   `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	h := s.coord.History()
	if body.Text != nil {
		if err := h.Rename(id, *body.Text); err != nil {
			writeError(w, err)
			return
		}
	}
	if body.Pinned != nil {
		if err := h.SetPinned(id, *body.Pinned); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.History().Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryShare(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.History().Share(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":   s.coord.Catalog(),
		"selected": s.coord.SelectedModel().ID,
	})
}

func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.coord.SelectModel(r.Context(), body.ID); err != nil {
		badRequest(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePrefsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"theme": string(s.coord.Preferences().Theme()),
	})
}

func (s *Server) handlePrefsSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	s.coord.Preferences().SetTheme(studio.Theme(body.Theme))
	w.WriteHeader(http.StatusNoContent)
}
