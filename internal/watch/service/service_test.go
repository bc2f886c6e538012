package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namewatch/internal/domain"
	"namewatch/internal/events"
	"namewatch/internal/watch/models"
	"namewatch/internal/watch/store"
)

func newTestService(t *testing.T) (*Service, *store.InMemoryStore, *events.InMemorySink) {
	t.Helper()
	st := store.NewInMemoryStore()
	sink := events.NewInMemorySink()
	svc, err := New(st, sink)
	require.NoError(t, err)
	return svc, st, sink
}

func TestCreateNormalizesDomain(t *testing.T) {
	svc, _, _ := newTestService(t)

	w, err := svc.Create(context.Background(), "owner-1", "https://www.Example.COM/page", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizedDomain("example.com"), w.Domain)
	assert.Equal(t, "owner-1", w.OwnerID)
	assert.True(t, w.IsActive)
	assert.Equal(t, time.Hour, w.CheckInterval, "zero interval selects the default")
	assert.Equal(t, domain.Status(""), w.LastStatus, "no baseline before the first check")
}

func TestCreateRejectsInvalidDomain(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "owner-1", "not a domain", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)
}

func TestCreateRejectsShortInterval(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "owner-1", "example.com", 10*time.Second)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "owner-1", "example.com", time.Hour)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)

	// Another owner sees not-found, never forbidden.
	_, err = svc.Get(ctx, "owner-2", w.ID)
	assert.True(t, IsNotFound(err))
}

func TestListScopedToOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "a.com", time.Hour)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", "b.com", time.Hour)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-2", "c.com", time.Hour)
	require.NoError(t, err)

	watches, err := svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, watches, 2)
}

func TestUpdateSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "owner-1", "example.com", time.Hour)
	require.NoError(t, err)

	interval := 2 * time.Hour
	inactive := false
	updated, err := svc.Update(ctx, "owner-1", w.ID, &interval, &inactive)
	require.NoError(t, err)
	assert.Equal(t, interval, updated.CheckInterval)
	assert.False(t, updated.IsActive)

	short := time.Second
	_, err = svc.Update(ctx, "owner-1", w.ID, &short, nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.Update(ctx, "owner-2", w.ID, &interval, nil)
	assert.True(t, IsNotFound(err))
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "owner-1", "example.com", time.Hour)
	require.NoError(t, err)

	assert.True(t, IsNotFound(svc.Delete(ctx, "owner-2", w.ID)))
	require.NoError(t, svc.Delete(ctx, "owner-1", w.ID))
	_, err = svc.Get(ctx, "owner-1", w.ID)
	assert.True(t, IsNotFound(err))
}

func TestEvents(t *testing.T) {
	svc, _, sink := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "owner-1", "example.com", time.Hour)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Raise(ctx, &models.DomainEvent{
			ID:       uuid.New(),
			WatchID:  w.ID,
			Domain:   w.Domain,
			Kind:     models.EventChanged,
			RaisedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	evs, err := svc.Events(ctx, "owner-1", w.ID, 2)
	require.NoError(t, err)
	assert.Len(t, evs, 2)

	_, err = svc.Events(ctx, "owner-2", w.ID, 0)
	assert.True(t, IsNotFound(err))
}

func TestEventsWithoutReader(t *testing.T) {
	st := store.NewInMemoryStore()
	svc, err := New(st, nil)
	require.NoError(t, err)
	ctx := context.Background()

	w, err := svc.Create(ctx, "owner-1", "example.com", time.Hour)
	require.NoError(t, err)

	evs, err := svc.Events(ctx, "owner-1", w.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, evs)
}
