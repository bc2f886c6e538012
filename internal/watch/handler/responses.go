package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"namewatch/internal/domain"
	"namewatch/internal/watch/models"
)

type watchResponse struct {
	ID                   uuid.UUID              `json:"id"`
	Domain               string                 `json:"domain"`
	CheckIntervalSeconds int64                  `json:"check_interval_seconds"`
	IsActive             bool                   `json:"is_active"`
	LastCheckedAt        *time.Time             `json:"last_checked_at,omitempty"`
	LastStatus           domain.Status          `json:"last_status,omitempty"`
	LastRecord           *domain.RegistryRecord `json:"last_record,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

func toWatchResponse(w *models.Watch) watchResponse {
	return watchResponse{
		ID:                   w.ID,
		Domain:               string(w.Domain),
		CheckIntervalSeconds: int64(w.CheckInterval / time.Second),
		IsActive:             w.IsActive,
		LastCheckedAt:        w.LastCheckedAt,
		LastStatus:           w.LastStatus,
		LastRecord:           w.LastRecord,
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}
}

type eventResponse struct {
	ID             uuid.UUID        `json:"id"`
	WatchID        uuid.UUID        `json:"watch_id"`
	Domain         string           `json:"domain"`
	Kind           models.EventKind `json:"kind"`
	PreviousStatus domain.Status    `json:"previous_status,omitempty"`
	CurrentStatus  domain.Status    `json:"current_status"`
	Message        string           `json:"message"`
	Payload        map[string]any   `json:"payload,omitempty"`
	RaisedAt       time.Time        `json:"raised_at"`
}

func toEventResponses(evs []*models.DomainEvent) []eventResponse {
	out := make([]eventResponse, 0, len(evs))
	for _, e := range evs {
		out = append(out, eventResponse{
			ID:             e.ID,
			WatchID:        e.WatchID,
			Domain:         string(e.Domain),
			Kind:           e.Kind,
			PreviousStatus: e.PreviousStatus,
			CurrentStatus:  e.CurrentStatus,
			Message:        e.Message,
			Payload:        e.Payload,
			RaisedAt:       e.RaisedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
