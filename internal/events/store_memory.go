package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"namewatch/internal/watch/models"
)

// InMemorySink appends events to a slice. Useful for tests and for running
// without a database; TrimBefore keeps it from growing without bound.
type InMemorySink struct {
	mu     sync.RWMutex
	events []models.DomainEvent
}

// NewInMemorySink creates an empty sink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Raise(_ context.Context, event *models.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *InMemorySink) ListByWatch(_ context.Context, watchID uuid.UUID, limit int) ([]*models.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DomainEvent
	// Newest first.
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].WatchID != watchID {
			continue
		}
		e := s.events[i]
		out = append(out, &e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// All returns every recorded event in raise order.
func (s *InMemorySink) All() []models.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// TrimBefore drops events raised before the cutoff and reports how many
// were removed.
func (s *InMemorySink) TrimBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if e.RaisedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}
