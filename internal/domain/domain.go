// Package domain holds the core types shared by the lookup pipeline, the
// result cache, and the watch monitor. Everything here is plain data: no I/O,
// no clocks, no globals.
package domain

import (
	"encoding/json"
	"time"
)

// NormalizedDomain is a domain name that has passed through Normalize.
// Every component below the normalization boundary requires one; plain
// strings are only accepted at the edges.
type NormalizedDomain string

func (d NormalizedDomain) String() string { return string(d) }

// Status is the classified registration status of a domain.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusRegistered Status = "registered"
	StatusReserved   Status = "reserved"
	StatusPremium    Status = "premium"
	StatusUnknown    Status = "unknown"
)

// IsAvailable reports whether the status means the domain can be registered
// at the standard price.
func (s Status) IsAvailable() bool { return s == StatusAvailable }

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusRegistered, StatusReserved, StatusPremium, StatusUnknown:
		return true
	}
	return false
}

// RegistryRecord is the structured view of a registry lookup response. All
// fields are optional; registries disagree wildly about what they return.
// Raw always carries the original payload for diagnosis.
type RegistryRecord struct {
	Registrar      string     `json:"registrar,omitempty"`
	CreatedDate    *time.Time `json:"creation_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	UpdatedDate    *time.Time `json:"updated_date,omitempty"`
	NameServers    []string   `json:"name_servers,omitempty"`
	StatusTokens   []string   `json:"status_tokens,omitempty"`
	Raw            string     `json:"-"`
}

// Expired reports whether the record carries an expiration date in the past
// relative to now.
func (r *RegistryRecord) Expired(now time.Time) bool {
	return r != nil && r.ExpirationDate != nil && r.ExpirationDate.Before(now)
}

// AvailabilityResult is the immutable outcome of one resolve+classify pass.
type AvailabilityResult struct {
	Domain     NormalizedDomain
	Status     Status
	Record     *RegistryRecord
	ResolvedAt time.Time
}

// MarshalJSON emits the wire shape consumed by API clients:
// domain, status, is_available, flattened record fields, resolved_at.
func (r AvailabilityResult) MarshalJSON() ([]byte, error) {
	wire := struct {
		Domain         string     `json:"domain"`
		Status         Status     `json:"status"`
		IsAvailable    bool       `json:"is_available"`
		Registrar      string     `json:"registrar,omitempty"`
		CreationDate   *time.Time `json:"creation_date,omitempty"`
		ExpirationDate *time.Time `json:"expiration_date,omitempty"`
		NameServers    []string   `json:"name_servers"`
		ResolvedAt     time.Time  `json:"resolved_at"`
	}{
		Domain:      string(r.Domain),
		Status:      r.Status,
		IsAvailable: r.Status.IsAvailable(),
		NameServers: []string{},
		ResolvedAt:  r.ResolvedAt,
	}
	if r.Record != nil {
		wire.Registrar = r.Record.Registrar
		wire.CreationDate = r.Record.CreatedDate
		wire.ExpirationDate = r.Record.ExpirationDate
		if r.Record.NameServers != nil {
			wire.NameServers = r.Record.NameServers
		}
	}
	return json.Marshal(wire)
}
