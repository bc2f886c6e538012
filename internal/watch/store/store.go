// Package store persists watches. Two implementations exist: an in-memory
// store for tests and single-process setups, and a PostgreSQL store for real
// deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"namewatch/internal/watch/models"
)

// ErrNotFound is returned when no watch exists for the given id.
var ErrNotFound = errors.New("watch not found")

// Store is the durable watch contract. UpdateCheckResult must replace the
// check-result fields as one atomic write; concurrent writers are
// last-writer-wins but a reader never observes a partial update.
type Store interface {
	Create(ctx context.Context, w *models.Watch) error
	Get(ctx context.Context, id uuid.UUID) (*models.Watch, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Watch, error)
	ListActive(ctx context.Context) ([]*models.Watch, error)

	// UpdateSettings changes the owner-controlled fields; nil means leave
	// the field as is.
	UpdateSettings(ctx context.Context, id uuid.UUID, checkInterval *time.Duration, isActive *bool) (*models.Watch, error)

	// UpdateCheckResult persists the monitor's per-check outcome.
	UpdateCheckResult(ctx context.Context, id uuid.UUID, result models.CheckResult) error

	Delete(ctx context.Context, id uuid.UUID) error
}
