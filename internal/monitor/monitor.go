// Package monitor runs the continuous re-check loop over active watches. One
// loop per process: each cycle loads the active watches, filters the ones
// whose interval has elapsed, runs them through the cached availability
// pipeline with a hard concurrency cap, persists the outcome, and raises
// events for observed transitions.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"namewatch/internal/domain"
	"namewatch/internal/events"
	"namewatch/internal/monitor/metrics"
	"namewatch/internal/watch/models"
	"namewatch/internal/watch/store"
)

const (
	defaultCycleInterval = time.Minute
	defaultMaxConcurrent = 5
	defaultExpiryHorizon = 30 * 24 * time.Hour
	defaultErrorBackoff  = time.Minute
)

// Checker is the availability pipeline dependency, satisfied by
// checker.Service.
type Checker interface {
	CheckNormalized(ctx context.Context, d domain.NormalizedDomain) (*domain.AvailabilityResult, error)
}

// Monitor drives the watch re-check loop.
type Monitor struct {
	watches store.Store
	checker Checker
	sink    events.Sink
	logger  *slog.Logger
	metrics *metrics.Metrics

	cycleInterval time.Duration
	maxConcurrent int
	expiryHorizon time.Duration
	errorBackoff  time.Duration

	now   func() time.Time
	newID func() uuid.UUID

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) { m.logger = logger }
}

func WithMetrics(mm *metrics.Metrics) Option {
	return func(m *Monitor) { m.metrics = mm }
}

// WithCycleInterval sets the sleep between cycles.
func WithCycleInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.cycleInterval = d
		}
	}
}

// WithMaxConcurrent caps simultaneous registry lookups within a cycle. The
// cap is a correctness requirement against rate-limited registries, not a
// tuning knob; it is never unlimited.
func WithMaxConcurrent(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.maxConcurrent = n
		}
	}
}

// WithExpiryHorizon sets how far ahead the expiring-soon reminder looks.
func WithExpiryHorizon(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.expiryHorizon = d
		}
	}
}

// WithErrorBackoff sets the pause after a cycle-level failure.
func WithErrorBackoff(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.errorBackoff = d
		}
	}
}

// New creates a Monitor. Store, checker and sink are required.
func New(watches store.Store, checker Checker, sink events.Sink, opts ...Option) (*Monitor, error) {
	if watches == nil {
		return nil, fmt.Errorf("watch store is required")
	}
	if checker == nil {
		return nil, fmt.Errorf("checker is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("event sink is required")
	}
	m := &Monitor{
		watches:       watches,
		checker:       checker,
		sink:          sink,
		logger:        slog.Default(),
		cycleInterval: defaultCycleInterval,
		maxConcurrent: defaultMaxConcurrent,
		expiryHorizon: defaultExpiryHorizon,
		errorBackoff:  defaultErrorBackoff,
		now:           time.Now,
		newID:         uuid.New,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start spawns the loop. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
	m.logger.Info("watch monitor started",
		"cycle_interval", m.cycleInterval,
		"max_concurrent", m.maxConcurrent)
}

// Stop signals the loop and waits for the in-flight cycle to finish, or for
// ctx to give up waiting. No work is interrupted mid-write.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		m.logger.Info("watch monitor stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("monitor shutdown: %w", ctx.Err())
	}
}

func (m *Monitor) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := m.runCycle(ctx); err != nil && ctx.Err() == nil {
			m.metrics.RecordCycleError()
			m.logger.Error("monitor cycle failed", "error", err)
			if !m.sleep(ctx, m.errorBackoff) {
				return
			}
			continue
		}
		if !m.sleep(ctx, m.cycleInterval) {
			return
		}
	}
}

// sleep waits for d unless the context is canceled first; it reports whether
// the loop should keep going.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// runCycle processes every due watch once. Per-watch failures are logged and
// contained; only orchestration-level failures (loading the watch list)
// surface as an error.
func (m *Monitor) runCycle(ctx context.Context) error {
	start := m.now()

	watches, err := m.watches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load active watches: %w", err)
	}
	m.metrics.SetActiveWatches(len(watches))

	now := m.now()
	g := new(errgroup.Group)
	g.SetLimit(m.maxConcurrent)
	for _, w := range watches {
		if !w.Due(now) {
			continue
		}
		w := w
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					m.metrics.RecordWatchError()
					m.logger.Error("panic while processing watch",
						"watch_id", w.ID, "domain", w.Domain, "panic", r)
				}
			}()
			if ctx.Err() != nil {
				return nil
			}
			if err := m.processWatch(ctx, w); err != nil {
				m.metrics.RecordWatchError()
				m.logger.Error("watch processing failed",
					"watch_id", w.ID, "domain", w.Domain, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.metrics.RecordCycle(m.now().Sub(start).Seconds())
	return nil
}

// processWatch checks one watch, persists the outcome, and raises whatever
// events the transition produced. The status write commits before any event
// is raised, so a sink failure never rolls it back.
func (m *Monitor) processWatch(ctx context.Context, w *models.Watch) error {
	m.metrics.RecordWatchChecked()

	result, err := m.checker.CheckNormalized(ctx, w.Domain)
	if err != nil {
		return fmt.Errorf("check %s: %w", w.Domain, err)
	}

	now := m.now().UTC()
	raised, notifiedFor := deriveEvents(w, result, now, m.expiryHorizon, m.newID)

	update := models.CheckResult{
		Status:            result.Status,
		CheckedAt:         now,
		Record:            result.Record,
		ExpiryNotifiedFor: notifiedFor,
	}
	if err := m.watches.UpdateCheckResult(ctx, w.ID, update); err != nil {
		// Not committed; the watch stays due and is retried next cycle.
		return fmt.Errorf("persist check result: %w", err)
	}

	for _, event := range raised {
		if err := m.sink.Raise(ctx, event); err != nil {
			m.logger.Error("event sink rejected event",
				"watch_id", w.ID, "domain", w.Domain, "kind", event.Kind, "error", err)
			continue
		}
		m.metrics.RecordEvent(string(event.Kind))
		m.logger.Info("domain event raised",
			"watch_id", w.ID, "domain", w.Domain, "kind", event.Kind,
			"previous_status", event.PreviousStatus, "current_status", event.CurrentStatus)
	}
	return nil
}
