package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"namewatch/internal/domain"
	"namewatch/internal/watch/models"
)

// PostgresStore persists watches in PostgreSQL via pgx. The record snapshot
// is stored as JSONB; the row update in UpdateCheckResult is a single
// statement, which gives the atomic-replace guarantee for free.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the watches table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS watches (
			id                  UUID PRIMARY KEY,
			owner_id            TEXT NOT NULL,
			domain              TEXT NOT NULL,
			check_interval_secs BIGINT NOT NULL,
			is_active           BOOLEAN NOT NULL DEFAULT TRUE,
			last_checked_at     TIMESTAMPTZ,
			last_status         TEXT,
			last_record         JSONB,
			expiry_notified_for TIMESTAMPTZ,
			created_at          TIMESTAMPTZ NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS watches_owner_idx ON watches (owner_id);
		CREATE INDEX IF NOT EXISTS watches_active_idx ON watches (is_active) WHERE is_active;
	`)
	if err != nil {
		return fmt.Errorf("ensure watches schema: %w", err)
	}
	return nil
}

const watchColumns = `id, owner_id, domain, check_interval_secs, is_active,
	last_checked_at, last_status, last_record, expiry_notified_for, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, w *models.Watch) error {
	record, err := marshalRecord(w.LastRecord)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO watches (`+watchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11)
	`, w.ID, w.OwnerID, string(w.Domain), int64(w.CheckInterval/time.Second), w.IsActive,
		w.LastCheckedAt, string(w.LastStatus), record, w.ExpiryNotifiedFor, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert watch %s: %w", w.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Watch, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+watchColumns+` FROM watches WHERE id = $1`, id)
	w, err := scanWatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get watch %s: %w", id, err)
	}
	return w, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Watch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+watchColumns+` FROM watches WHERE owner_id = $1 ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list watches for owner %s: %w", ownerID, err)
	}
	defer rows.Close()
	return collectWatches(rows)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Watch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+watchColumns+` FROM watches WHERE is_active ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list active watches: %w", err)
	}
	defer rows.Close()
	return collectWatches(rows)
}

func (s *PostgresStore) UpdateSettings(ctx context.Context, id uuid.UUID, checkInterval *time.Duration, isActive *bool) (*models.Watch, error) {
	var intervalSecs *int64
	if checkInterval != nil {
		secs := int64(*checkInterval / time.Second)
		intervalSecs = &secs
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE watches SET
			check_interval_secs = COALESCE($2, check_interval_secs),
			is_active = COALESCE($3, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+watchColumns, id, intervalSecs, isActive)
	w, err := scanWatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update watch %s: %w", id, err)
	}
	return w, nil
}

func (s *PostgresStore) UpdateCheckResult(ctx context.Context, id uuid.UUID, result models.CheckResult) error {
	record, err := marshalRecord(result.Record)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE watches SET
			last_checked_at = $2,
			last_status = $3,
			last_record = $4,
			expiry_notified_for = $5,
			updated_at = now()
		WHERE id = $1
	`, id, result.CheckedAt, string(result.Status), record, result.ExpiryNotifiedFor)
	if err != nil {
		return fmt.Errorf("update check result for watch %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM watches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete watch %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalRecord(rec *domain.RegistryRecord) ([]byte, error) {
	if rec == nil {
		return nil, nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record snapshot: %w", err)
	}
	return payload, nil
}

func scanWatch(row pgx.Row) (*models.Watch, error) {
	var (
		w            models.Watch
		domainName   string
		intervalSecs int64
		lastStatus   *string
		record       []byte
	)
	err := row.Scan(&w.ID, &w.OwnerID, &domainName, &intervalSecs, &w.IsActive,
		&w.LastCheckedAt, &lastStatus, &record, &w.ExpiryNotifiedFor, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Domain = domain.NormalizedDomain(domainName)
	w.CheckInterval = time.Duration(intervalSecs) * time.Second
	if lastStatus != nil {
		w.LastStatus = domain.Status(*lastStatus)
	}
	if len(record) > 0 {
		var rec domain.RegistryRecord
		if err := json.Unmarshal(record, &rec); err != nil {
			return nil, fmt.Errorf("decode record snapshot: %w", err)
		}
		w.LastRecord = &rec
	}
	return &w, nil
}

func collectWatches(rows pgx.Rows) ([]*models.Watch, error) {
	var out []*models.Watch
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
