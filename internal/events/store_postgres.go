package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"namewatch/internal/domain"
	"namewatch/internal/watch/models"
)

// PostgresSink records events in an append-only table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink wraps an existing connection pool.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// EnsureSchema creates the events table when it does not exist yet.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS domain_events (
			id              UUID PRIMARY KEY,
			watch_id        UUID NOT NULL,
			domain          TEXT NOT NULL,
			kind            TEXT NOT NULL,
			previous_status TEXT,
			current_status  TEXT NOT NULL,
			message         TEXT NOT NULL,
			payload         JSONB,
			raised_at       TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS domain_events_watch_idx ON domain_events (watch_id, raised_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure domain_events schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Raise(ctx context.Context, event *models.DomainEvent) error {
	var payload []byte
	if event.Payload != nil {
		var err error
		payload, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("%w: encode payload: %v", ErrSinkUnavailable, err)
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO domain_events (id, watch_id, domain, kind, previous_status,
			current_status, message, payload, raised_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
	`, event.ID, event.WatchID, string(event.Domain), string(event.Kind),
		string(event.PreviousStatus), string(event.CurrentStatus),
		event.Message, payload, event.RaisedAt)
	if err != nil {
		return fmt.Errorf("%w: insert event for watch %s: %v", ErrSinkUnavailable, event.WatchID, err)
	}
	return nil
}

func (s *PostgresSink) ListByWatch(ctx context.Context, watchID uuid.UUID, limit int) ([]*models.DomainEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, watch_id, domain, kind, previous_status, current_status,
			message, payload, raised_at
		FROM domain_events
		WHERE watch_id = $1
		ORDER BY raised_at DESC
		LIMIT $2
	`, watchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events for watch %s: %w", watchID, err)
	}
	defer rows.Close()

	var out []*models.DomainEvent
	for rows.Next() {
		var (
			e          models.DomainEvent
			domainName string
			kind       string
			prev       *string
			current    string
			payload    []byte
		)
		if err := rows.Scan(&e.ID, &e.WatchID, &domainName, &kind, &prev,
			&current, &e.Message, &payload, &e.RaisedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Domain = domain.NormalizedDomain(domainName)
		e.Kind = models.EventKind(kind)
		if prev != nil {
			e.PreviousStatus = domain.Status(*prev)
		}
		e.CurrentStatus = domain.Status(current)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload: %w", err)
			}
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TrimBefore deletes events raised before the cutoff, for the retention
// sweep, and reports how many rows went away.
func (s *PostgresSink) TrimBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM domain_events WHERE raised_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("trim events before %s: %w", cutoff, err)
	}
	return int(tag.RowsAffected()), nil
}
