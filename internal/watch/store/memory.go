package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"namewatch/internal/watch/models"
)

// InMemoryStore keeps watches in a map guarded by a RWMutex. Values are
// copied on the way in and out so callers can never mutate stored state
// behind the lock's back.
type InMemoryStore struct {
	mu      sync.RWMutex
	watches map[uuid.UUID]models.Watch
}

// NewInMemoryStore creates an empty watch store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{watches: make(map[uuid.UUID]models.Watch)}
}

func (s *InMemoryStore) Create(_ context.Context, w *models.Watch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watches[w.ID] = *w
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Watch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.watches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*models.Watch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Watch
	for _, w := range s.watches {
		if w.OwnerID == ownerID {
			w := w
			out = append(out, &w)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]*models.Watch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Watch
	for _, w := range s.watches {
		if w.IsActive {
			w := w
			out = append(out, &w)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemoryStore) UpdateSettings(_ context.Context, id uuid.UUID, checkInterval *time.Duration, isActive *bool) (*models.Watch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watches[id]
	if !ok {
		return nil, ErrNotFound
	}
	if checkInterval != nil {
		w.CheckInterval = *checkInterval
	}
	if isActive != nil {
		w.IsActive = *isActive
	}
	w.UpdatedAt = time.Now().UTC()
	s.watches[id] = w
	return &w, nil
}

func (s *InMemoryStore) UpdateCheckResult(_ context.Context, id uuid.UUID, result models.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watches[id]
	if !ok {
		return ErrNotFound
	}
	checkedAt := result.CheckedAt
	w.LastCheckedAt = &checkedAt
	w.LastStatus = result.Status
	w.LastRecord = result.Record
	w.ExpiryNotifiedFor = result.ExpiryNotifiedFor
	w.UpdatedAt = time.Now().UTC()
	s.watches[id] = w
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watches[id]; !ok {
		return ErrNotFound
	}
	delete(s.watches, id)
	return nil
}

func sortByCreation(watches []*models.Watch) {
	sort.Slice(watches, func(i, j int) bool {
		if watches[i].CreatedAt.Equal(watches[j].CreatedAt) {
			return watches[i].ID.String() < watches[j].ID.String()
		}
		return watches[i].CreatedAt.Before(watches[j].CreatedAt)
	})
}
