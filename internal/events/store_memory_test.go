package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namewatch/internal/watch/models"
)

func raise(t *testing.T, s *InMemorySink, watchID uuid.UUID, raisedAt time.Time) {
	t.Helper()
	require.NoError(t, s.Raise(context.Background(), &models.DomainEvent{
		ID:       uuid.New(),
		WatchID:  watchID,
		Domain:   "example.com",
		Kind:     models.EventChanged,
		RaisedAt: raisedAt,
	}))
}

func TestInMemorySinkListByWatch(t *testing.T) {
	s := NewInMemorySink()
	watchID := uuid.New()
	otherID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raise(t, s, watchID, base)
	raise(t, s, otherID, base.Add(time.Second))
	raise(t, s, watchID, base.Add(2*time.Second))
	raise(t, s, watchID, base.Add(3*time.Second))

	got, err := s.ListByWatch(context.Background(), watchID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Newest first.
	assert.True(t, got[0].RaisedAt.After(got[1].RaisedAt))
	assert.True(t, got[1].RaisedAt.After(got[2].RaisedAt))

	limited, err := s.ListByWatch(context.Background(), watchID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.True(t, limited[0].RaisedAt.Equal(base.Add(3*time.Second)))
}

func TestInMemorySinkTrimBefore(t *testing.T) {
	s := NewInMemorySink()
	watchID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raise(t, s, watchID, base)
	raise(t, s, watchID, base.Add(time.Hour))
	raise(t, s, watchID, base.Add(2*time.Hour))

	removed, err := s.TrimBefore(context.Background(), base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, s.All(), 1)
}

func TestInMemorySinkEventsAreCopied(t *testing.T) {
	s := NewInMemorySink()
	event := &models.DomainEvent{
		ID:       uuid.New(),
		WatchID:  uuid.New(),
		Domain:   "example.com",
		Kind:     models.EventChanged,
		Message:  "original",
		RaisedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Raise(context.Background(), event))

	event.Message = "mutated"
	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "original", all[0].Message)
}
