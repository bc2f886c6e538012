package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"namewatch/internal/domain"
)

const redisKeyPrefix = "namewatch:availability:"

// redisEntry is the stored form of a result. Raw payloads are kept so a
// cache hit carries the same diagnostic data as a fresh lookup.
type redisEntry struct {
	Status     domain.Status          `json:"status"`
	Record     *domain.RegistryRecord `json:"record,omitempty"`
	RawPayload string                 `json:"raw_payload,omitempty"`
	ResolvedAt time.Time              `json:"resolved_at"`
}

// Redis is a ResultCache backed by a shared Redis instance, for deployments
// running more than one process against the same registry budget. Expiry
// rides on Redis key TTLs, so no sweeper is needed.
type Redis struct {
	client *redis.Client
	policy TTLPolicy
}

// NewRedis wraps an already-connected client.
func NewRedis(client *redis.Client, policy TTLPolicy) *Redis {
	return &Redis{client: client, policy: policy}
}

func (c *Redis) Get(ctx context.Context, d domain.NormalizedDomain) (*domain.AvailabilityResult, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+string(d)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", d, err)
	}

	var entry redisEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("decode cached result for %s: %w", d, err)
	}
	if entry.Record != nil {
		entry.Record.Raw = entry.RawPayload
	}
	return &domain.AvailabilityResult{
		Domain:     d,
		Status:     entry.Status,
		Record:     entry.Record,
		ResolvedAt: entry.ResolvedAt,
	}, nil
}

func (c *Redis) Put(ctx context.Context, result *domain.AvailabilityResult) error {
	entry := redisEntry{
		Status:     result.Status,
		Record:     result.Record,
		ResolvedAt: result.ResolvedAt,
	}
	if result.Record != nil {
		entry.RawPayload = result.Record.Raw
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode result for %s: %w", result.Domain, err)
	}

	ttl := c.policy.For(result.Status)
	if err := c.client.Set(ctx, redisKeyPrefix+string(result.Domain), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", result.Domain, err)
	}
	return nil
}
