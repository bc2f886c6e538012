// Package models defines the durable watch record and the events the
// monitor raises when a watched domain changes state.
package models

import (
	"time"

	"github.com/google/uuid"

	"namewatch/internal/domain"
)

// Watch is a durable subscription tracking one domain for one owner. The
// monitor exclusively owns the check-result fields (LastCheckedAt,
// LastStatus, LastRecord, ExpiryNotifiedFor); owners control the interval
// and active flag and are the only ones who delete a watch.
type Watch struct {
	ID            uuid.UUID               `json:"id"`
	OwnerID       string                  `json:"owner_id"`
	Domain        domain.NormalizedDomain `json:"domain"`
	CheckInterval time.Duration           `json:"check_interval"`
	IsActive      bool                    `json:"is_active"`

	LastCheckedAt *time.Time             `json:"last_checked_at,omitempty"`
	LastStatus    domain.Status          `json:"last_status,omitempty"`
	LastRecord    *domain.RegistryRecord `json:"last_record,omitempty"`

	// ExpiryNotifiedFor remembers which expiration date already triggered
	// an expiring-soon reminder, so the reminder fires once per renewal
	// period rather than on every cycle inside the horizon.
	ExpiryNotifiedFor *time.Time `json:"expiry_notified_for,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Due reports whether the watch should be checked at the given instant. A
// watch that has never been checked is always due.
func (w *Watch) Due(now time.Time) bool {
	if w.LastCheckedAt == nil {
		return true
	}
	return !now.Before(w.LastCheckedAt.Add(w.CheckInterval))
}

// CheckResult is the atomic status update the monitor persists after each
// check, whether or not an event was raised.
type CheckResult struct {
	Status            domain.Status
	CheckedAt         time.Time
	Record            *domain.RegistryRecord
	ExpiryNotifiedFor *time.Time
}

// EventKind labels a domain event.
type EventKind string

const (
	EventBecameAvailable EventKind = "became_available"
	EventExpiringSoon    EventKind = "expiring_soon"
	EventChanged         EventKind = "changed"
	EventExpired         EventKind = "expired"
	EventTransferred     EventKind = "transferred"
)

// DomainEvent records one observed change for a watch. Events are
// append-only; nothing in the system mutates one after it is raised.
type DomainEvent struct {
	ID             uuid.UUID               `json:"id"`
	WatchID        uuid.UUID               `json:"watch_id"`
	Domain         domain.NormalizedDomain `json:"domain"`
	Kind           EventKind               `json:"kind"`
	PreviousStatus domain.Status           `json:"previous_status,omitempty"`
	CurrentStatus  domain.Status           `json:"current_status"`
	Message        string                  `json:"message"`
	Payload        map[string]any          `json:"payload,omitempty"`
	RaisedAt       time.Time               `json:"raised_at"`
}
