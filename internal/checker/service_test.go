package checker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namewatch/internal/checker/cache"
	"namewatch/internal/domain"
	"namewatch/internal/lookup"
)

// stubResolver counts lookups and can simulate slow or failing registries.
type stubResolver struct {
	mu      sync.Mutex
	calls   int32
	delay   time.Duration
	outcome lookup.Outcome
	err     error
}

func (r *stubResolver) Resolve(ctx context.Context, d domain.NormalizedDomain) (lookup.Outcome, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return lookup.Outcome{}, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome, r.err
}

func (r *stubResolver) callCount() int { return int(atomic.LoadInt32(&r.calls)) }

func availableOutcome() lookup.Outcome {
	return lookup.Outcome{Record: &domain.RegistryRecord{Raw: `No match for domain "FRESH-NAME.COM".`}}
}

func newTestService(t *testing.T, resolver *stubResolver) (*Service, *cache.Memory) {
	t.Helper()
	mem := cache.NewMemory(cache.DefaultTTLPolicy())
	svc, err := New(resolver, mem)
	require.NoError(t, err)
	return svc, mem
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, cache.NewMemory(cache.DefaultTTLPolicy()))
	assert.Error(t, err)
	_, err = New(&stubResolver{}, nil)
	assert.Error(t, err)
}

func TestCheckRejectsInvalidDomain(t *testing.T) {
	resolver := &stubResolver{outcome: availableOutcome()}
	svc, _ := newTestService(t, resolver)

	_, err := svc.Check(context.Background(), "not a domain")
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)
	assert.Equal(t, 0, resolver.callCount())
}

func TestCheckClassifiesAndCaches(t *testing.T) {
	resolver := &stubResolver{outcome: availableOutcome()}
	svc, _ := newTestService(t, resolver)
	ctx := context.Background()

	result, err := svc.Check(ctx, "https://www.Fresh-Name.COM/")
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizedDomain("fresh-name.com"), result.Domain)
	assert.Equal(t, domain.StatusAvailable, result.Status)
	assert.Equal(t, 1, resolver.callCount())

	// Second check inside the TTL is served from cache.
	again, err := svc.Check(ctx, "fresh-name.com")
	require.NoError(t, err)
	assert.Equal(t, result.Status, again.Status)
	assert.Equal(t, 1, resolver.callCount())
}

func TestCheckLookupFailureBecomesUnknown(t *testing.T) {
	resolver := &stubResolver{err: &lookup.Error{
		Kind:    lookup.FailureTimeout,
		Domain:  "slow-registry.com",
		Message: "whois query timed out",
	}}
	svc, _ := newTestService(t, resolver)

	result, err := svc.Check(context.Background(), "slow-registry.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnknown, result.Status)

	// The unknown result is cached too, so the registry gets breathing room.
	_, err = svc.Check(context.Background(), "slow-registry.com")
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.callCount())
}

func TestCheckNormalizedDeduplicatesConcurrentLookups(t *testing.T) {
	resolver := &stubResolver{outcome: availableOutcome(), delay: 50 * time.Millisecond}
	svc, _ := newTestService(t, resolver)
	ctx := context.Background()

	const callers = 8
	results := make([]*domain.AvailabilityResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CheckNormalized(ctx, "fresh-name.com")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, resolver.callCount(), "concurrent callers must share one lookup")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, domain.StatusAvailable, results[i].Status)
	}
}

func TestCheckDifferentDomainsResolveIndependently(t *testing.T) {
	resolver := &stubResolver{outcome: availableOutcome()}
	svc, _ := newTestService(t, resolver)
	ctx := context.Background()

	_, err := svc.CheckNormalized(ctx, "first.com")
	require.NoError(t, err)
	_, err = svc.CheckNormalized(ctx, "second.com")
	require.NoError(t, err)
	assert.Equal(t, 2, resolver.callCount())
}

func TestCheckSurvivesBrokenCache(t *testing.T) {
	resolver := &stubResolver{outcome: availableOutcome()}
	svc, err := New(resolver, brokenCache{})
	require.NoError(t, err)

	result, err := svc.Check(context.Background(), "fresh-name.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, result.Status)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, domain.NormalizedDomain) (*domain.AvailabilityResult, error) {
	return nil, assert.AnError
}

func (brokenCache) Put(context.Context, *domain.AvailabilityResult) error {
	return assert.AnError
}
