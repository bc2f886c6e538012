// Package cache stores classified availability results in front of the
// registry lookup pipeline so a recently checked domain is not queried again
// within its freshness window.
package cache

import (
	"context"
	"errors"
	"time"

	"namewatch/internal/domain"
)

// ErrNotFound is returned by Get when no fresh entry exists for the domain.
var ErrNotFound = errors.New("not found")

// ResultCache is shared by the synchronous check path and the watch monitor.
// Put replaces any existing entry atomically; the TTL is derived from the
// result's status and is not caller-overridable.
type ResultCache interface {
	Get(ctx context.Context, d domain.NormalizedDomain) (*domain.AvailabilityResult, error)
	Put(ctx context.Context, result *domain.AvailabilityResult) error
}

// TTLPolicy maps a status to a freshness window. Availability is the
// volatile, high-value signal so it expires sooner than a registered result;
// unknown results expire quickly to force a prompt retry.
type TTLPolicy struct {
	Available  time.Duration
	Registered time.Duration
	Unknown    time.Duration
}

// DefaultTTLPolicy returns the standard asymmetric windows.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Available:  time.Hour,
		Registered: 24 * time.Hour,
		Unknown:    time.Hour,
	}
}

// For returns the TTL for a classified status. Reserved and premium names
// change hands about as often as registered ones and share their window.
func (p TTLPolicy) For(s domain.Status) time.Duration {
	switch s {
	case domain.StatusAvailable:
		return p.Available
	case domain.StatusRegistered, domain.StatusReserved, domain.StatusPremium:
		return p.Registered
	default:
		return p.Unknown
	}
}
