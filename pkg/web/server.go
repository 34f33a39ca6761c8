// Package web exposes the studio coordinator as a JSON API for a
// browser front-end.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/conversation"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/gateway"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/studio"
)

// defaultMaxBody caps request bodies at 32 MiB; inline base64
// attachments need the headroom.
const defaultMaxBody = 32 << 20

// Server routes HTTP requests to the coordinator.
type Server struct {
	coord   *studio.Coordinator
	log     *slog.Logger
	maxBody int64
}

// NewServer builds the HTTP surface. maxBody <= 0 selects the default
// body cap.
func NewServer(coord *studio.Coordinator, log *slog.Logger, maxBody int64) *Server {
	if log == nil {
		log = slog.Default()
	}
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &Server{coord: coord, log: log, maxBody: maxBody}
}

// Routes assembles the router with logging, metrics and body-cap
// middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(logMiddleware(s.log))
	r.Use(metricsMiddleware)
	r.Use(limitBody(s.maxBody))

	r.Route("/api", func(r chi.Router) {
		r.Route("/views/{view}", func(r chi.Router) {
			r.Get("/timeline", s.handleTimeline)
			r.Post("/messages", s.handleSubmit)
			r.Post("/messages/{id}/regenerate", s.handleRegenerate)
			r.Post("/messages/{id}/copy", s.handleCopy)
			r.Get("/messages/{id}/download", s.handleDownload)
			r.Post("/suggest", s.handleSuggest)
			r.Post("/handoff/consume", s.handleConsumeHandoff)
		})

		r.Post("/topic", s.handleNewTopic)
		r.Post("/view", s.handleSetView)
		r.Post("/handoff/video-image", s.handleHandoffImage)
		r.Post("/handoff/prompt", s.handleHandoffPrompt)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistoryList)
			r.Post("/", s.handleHistoryAdd)
			r.Patch("/{id}", s.handleHistoryUpdate)
			r.Delete("/{id}", s.handleHistoryDelete)
			r.Post("/{id}/share", s.handleHistoryShare)
		})

		r.Get("/models", s.handleModels)
		r.Put("/model", s.handleSelectModel)

		r.Get("/prefs", s.handlePrefsGet)
		r.Put("/prefs", s.handlePrefsSet)
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) view(r *http.Request) (studio.View, bool) {
	v := studio.View(chi.URLParam(r, "view"))
	return v, v.Valid()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, conversation.ErrValidation),
		errors.Is(err, studio.ErrEmptyTitle),
		errors.Is(err, assets.ErrConversion):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, conversation.ErrSendInFlight):
		status = http.StatusConflict
	case errors.Is(err, studio.ErrHistoryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gateway.ErrGenerationFailed),
		errors.Is(err, gateway.ErrAssistantResponseInvalid):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
