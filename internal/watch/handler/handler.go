// Package handler is the thin HTTP layer over the watch service and the
// availability checker. Authentication happens upstream; by the time a
// request lands here the owner identity is already in the X-Owner-ID header.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"namewatch/internal/domain"
	"namewatch/internal/watch/service"
)

const ownerHeader = "X-Owner-ID"

// Checker is the synchronous check-now dependency.
type Checker interface {
	Check(ctx context.Context, rawDomain string) (*domain.AvailabilityResult, error)
}

// Handler exposes watch CRUD and the check-now endpoint.
type Handler struct {
	watches *service.Service
	checker Checker
	logger  *slog.Logger
}

// New creates a Handler.
func New(watches *service.Service, checker Checker, logger *slog.Logger) *Handler {
	return &Handler{watches: watches, checker: checker, logger: logger}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domains/check", h.handleCheckNow)
	r.Route("/watches", func(r chi.Router) {
		r.Post("/", h.handleCreateWatch)
		r.Get("/", h.handleListWatches)
		r.Route("/{watchID}", func(r chi.Router) {
			r.Get("/", h.handleGetWatch)
			r.Patch("/", h.handleUpdateWatch)
			r.Delete("/", h.handleDeleteWatch)
			r.Get("/events", h.handleListEvents)
		})
	})
}

func (h *Handler) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	rawDomain := r.URL.Query().Get("domain")
	if rawDomain == "" {
		writeError(w, http.StatusBadRequest, "domain query parameter is required")
		return
	}

	result, err := h.checker.Check(r.Context(), rawDomain)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createWatchRequest struct {
	Domain               string `json:"domain"`
	CheckIntervalSeconds int64  `json:"check_interval_seconds"`
}

func (h *Handler) handleCreateWatch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req createWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	watch, err := h.watches.Create(r.Context(), ownerID, req.Domain,
		time.Duration(req.CheckIntervalSeconds)*time.Second)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWatchResponse(watch))
}

func (h *Handler) handleListWatches(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	watches, err := h.watches.List(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]watchResponse, 0, len(watches))
	for _, watch := range watches {
		out = append(out, toWatchResponse(watch))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetWatch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.watchID(w, r)
	if !ok {
		return
	}

	watch, err := h.watches.Get(r.Context(), ownerID, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWatchResponse(watch))
}

type updateWatchRequest struct {
	CheckIntervalSeconds *int64 `json:"check_interval_seconds,omitempty"`
	IsActive             *bool  `json:"is_active,omitempty"`
}

func (h *Handler) handleUpdateWatch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.watchID(w, r)
	if !ok {
		return
	}

	var req updateWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var interval *time.Duration
	if req.CheckIntervalSeconds != nil {
		d := time.Duration(*req.CheckIntervalSeconds) * time.Second
		interval = &d
	}

	watch, err := h.watches.Update(r.Context(), ownerID, id, interval, req.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWatchResponse(watch))
}

func (h *Handler) handleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.watchID(w, r)
	if !ok {
		return
	}

	if err := h.watches.Delete(r.Context(), ownerID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.watchID(w, r)
	if !ok {
		return
	}

	evs, err := h.watches.Events(r.Context(), ownerID, id, 100)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponses(evs))
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "missing owner identity")
		return "", false
	}
	return ownerID, true
}

func (h *Handler) watchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "watchID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid watch id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDomain), errors.Is(err, service.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, err.Error())
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, "watch not found")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
