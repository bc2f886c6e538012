// Package events defines the sink boundary the monitor raises domain events
// into. The sink's only job here is durable recording; downstream delivery
// (mail, webhooks) hangs off the stored events and its failures never flow
// back into the monitor.
package events

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"namewatch/internal/watch/models"
)

// ErrSinkUnavailable wraps persistence failures inside the sink so callers
// can tell "event lost" apart from their own errors.
var ErrSinkUnavailable = errors.New("event sink unavailable")

// Sink accepts raised events. Raise must be quick: persist and return.
type Sink interface {
	Raise(ctx context.Context, event *models.DomainEvent) error
}

// Reader is the query side used by the API layer to list a watch's history.
// Both provided sinks implement it.
type Reader interface {
	ListByWatch(ctx context.Context, watchID uuid.UUID, limit int) ([]*models.DomainEvent, error)
}
