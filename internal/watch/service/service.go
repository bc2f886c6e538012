// Package service implements owner-facing watch management. The monitor owns
// the check-result fields; this service only ever touches the fields an
// owner controls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"namewatch/internal/domain"
	"namewatch/internal/events"
	"namewatch/internal/watch/models"
	"namewatch/internal/watch/store"
)

const (
	defaultCheckInterval = time.Hour
	minCheckInterval     = time.Minute
)

// ErrInvalidInterval rejects check intervals below the minimum.
var ErrInvalidInterval = fmt.Errorf("check interval must be at least %s", minCheckInterval)

// Service manages watches on behalf of owners.
type Service struct {
	store  store.Store
	events events.Reader
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a watch Service. The event reader may be nil when no event
// store is wired; Events then returns an empty history.
func New(st store.Store, eventsReader events.Reader, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("watch store is required")
	}
	s := &Service{
		store:  st,
		events: eventsReader,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create registers a new watch for the owner. The domain is normalized here,
// once, at the boundary; an interval of zero selects the default.
func (s *Service) Create(ctx context.Context, ownerID, rawDomain string, checkInterval time.Duration) (*models.Watch, error) {
	d, err := domain.Normalize(rawDomain)
	if err != nil {
		return nil, err
	}
	if checkInterval == 0 {
		checkInterval = defaultCheckInterval
	}
	if checkInterval < minCheckInterval {
		return nil, ErrInvalidInterval
	}

	now := s.now().UTC()
	w := &models.Watch{
		ID:            s.newID(),
		OwnerID:       ownerID,
		Domain:        d,
		CheckInterval: checkInterval,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create watch for %s: %w", d, err)
	}
	s.logger.InfoContext(ctx, "watch created",
		"watch_id", w.ID, "domain", d, "owner_id", ownerID, "check_interval", checkInterval)
	return w, nil
}

// Get returns the watch if it exists and belongs to the owner. A watch owned
// by someone else reports not-found rather than leaking its existence.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Watch, error) {
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return w, nil
}

// List returns all of the owner's watches.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.Watch, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Update changes the interval and/or active flag. Nil leaves a field as is.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, checkInterval *time.Duration, isActive *bool) (*models.Watch, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if checkInterval != nil && *checkInterval < minCheckInterval {
		return nil, ErrInvalidInterval
	}
	return s.store.UpdateSettings(ctx, id, checkInterval, isActive)
}

// Delete removes the watch. Raised events stay; they are append-only.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "watch deleted", "watch_id", id, "owner_id", ownerID)
	return nil
}

// Events lists the watch's raised events, newest first.
func (s *Service) Events(ctx context.Context, ownerID string, id uuid.UUID, limit int) ([]*models.DomainEvent, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if s.events == nil {
		return nil, nil
	}
	evs, err := s.events.ListByWatch(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list events for watch %s: %w", id, err)
	}
	return evs, nil
}

// IsNotFound reports whether the error means the watch does not exist (or is
// not visible to the caller).
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
