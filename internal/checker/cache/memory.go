package cache

import (
	"context"
	"sync"
	"time"

	"namewatch/internal/domain"
)

type memoryEntry struct {
	result     *domain.AvailabilityResult
	insertedAt time.Time
	expiresAt  time.Time
}

// Memory is an in-process ResultCache. Eviction is purely time-based: an
// entry past its deadline is dropped lazily on the next access, and
// PurgeExpired exists for the maintenance sweep so long-idle keys do not
// accumulate forever.
type Memory struct {
	mu      sync.RWMutex
	entries map[domain.NormalizedDomain]memoryEntry
	policy  TTLPolicy

	now func() time.Time
}

// NewMemory creates an empty in-memory cache with the given TTL policy.
func NewMemory(policy TTLPolicy) *Memory {
	return &Memory{
		entries: make(map[domain.NormalizedDomain]memoryEntry),
		policy:  policy,
		now:     time.Now,
	}
}

func (c *Memory) Get(_ context.Context, d domain.NormalizedDomain) (*domain.AvailabilityResult, error) {
	c.mu.RLock()
	entry, ok := c.entries[d]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a fresh Put may have raced us.
		if cur, ok := c.entries[d]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, d)
		}
		c.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.result, nil
}

func (c *Memory) Put(_ context.Context, result *domain.AvailabilityResult) error {
	now := c.now()
	c.mu.Lock()
	c.entries[result.Domain] = memoryEntry{
		result:     result,
		insertedAt: now,
		expiresAt:  now.Add(c.policy.For(result.Status)),
	}
	c.mu.Unlock()
	return nil
}

// PurgeExpired removes every entry past its deadline and reports how many
// were dropped.
func (c *Memory) PurgeExpired(_ context.Context) int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for d, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, d)
			purged++
		}
	}
	return purged
}

// Len reports the number of entries currently held, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
