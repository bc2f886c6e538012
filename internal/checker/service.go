// Package checker owns the cached availability pipeline: normalize, consult
// the result cache, resolve and classify on a miss, write the result back.
// The HTTP check-now path and the watch monitor both go through this service
// so their answers can never diverge.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"namewatch/internal/checker/cache"
	"namewatch/internal/checker/metrics"
	"namewatch/internal/domain"
	"namewatch/internal/lookup"
)

// DomainResolver is the registry lookup dependency.
type DomainResolver interface {
	Resolve(ctx context.Context, d domain.NormalizedDomain) (lookup.Outcome, error)
}

// Service is the cache-aware availability checker.
type Service struct {
	resolver DomainResolver
	cache    cache.ResultCache
	group    singleflight.Group
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a checker Service. Both the resolver and the cache are
// required.
func New(resolver DomainResolver, resultCache cache.ResultCache, opts ...Option) (*Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if resultCache == nil {
		return nil, fmt.Errorf("result cache is required")
	}
	s := &Service{
		resolver: resolver,
		cache:    resultCache,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Check normalizes the raw domain and returns its availability. Lookup
// failures do not surface as errors: they classify as unknown, are cached
// briefly, and retried once the short TTL lapses. The only error callers see
// is domain.ErrInvalidDomain for malformed input.
func (s *Service) Check(ctx context.Context, rawDomain string) (*domain.AvailabilityResult, error) {
	d, err := domain.Normalize(rawDomain)
	if err != nil {
		return nil, err
	}
	return s.CheckNormalized(ctx, d)
}

// CheckNormalized is Check for callers that already hold a normalized
// domain, such as the watch monitor.
func (s *Service) CheckNormalized(ctx context.Context, d domain.NormalizedDomain) (*domain.AvailabilityResult, error) {
	if result, err := s.cache.Get(ctx, d); err == nil {
		s.metrics.RecordCacheHit()
		s.metrics.RecordCheck(string(result.Status))
		return result, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		// A broken cache backend must not take checks down with it.
		s.logger.WarnContext(ctx, "result cache read failed", "domain", d, "error", err)
	}
	s.metrics.RecordCacheMiss()

	// One outstanding registry lookup per domain, no matter how many
	// concurrent callers ask. Everyone shares the winner's result.
	v, err, shared := s.group.Do(string(d), func() (any, error) {
		return s.resolveAndStore(ctx, d), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.metrics.RecordSharedLookup()
	}

	result := v.(*domain.AvailabilityResult)
	s.metrics.RecordCheck(string(result.Status))
	return result, nil
}

// resolveAndStore runs the uncached pipeline and writes the outcome through
// the cache. It never fails: lookup errors become an unknown-status result.
func (s *Service) resolveAndStore(ctx context.Context, d domain.NormalizedDomain) *domain.AvailabilityResult {
	// Serve a fresh entry written while we waited on the flight group.
	if result, err := s.cache.Get(ctx, d); err == nil {
		return result
	}

	start := s.now()
	outcome, lookupErr := s.resolver.Resolve(ctx, d)
	s.metrics.ObserveLookupDuration(s.now().Sub(start).Seconds())

	if lookupErr != nil {
		kind := lookup.KindOf(lookupErr)
		s.metrics.RecordLookupFailure(string(kind))
		s.logger.WarnContext(ctx, "registry lookup failed",
			"domain", d, "kind", kind, "error", lookupErr)
	}

	result := &domain.AvailabilityResult{
		Domain:     d,
		Status:     lookup.Classify(outcome.ProbeSucceeded, outcome.Record, lookupErr, s.now()),
		Record:     outcome.Record,
		ResolvedAt: s.now().UTC(),
	}

	if err := s.cache.Put(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "result cache write failed", "domain", d, "error", err)
	}
	return result
}
