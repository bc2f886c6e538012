// Command server runs the namewatch API, the watch monitor loop and the
// maintenance scheduler in a single process. Backends are selected by
// configuration: Postgres and Redis when URLs are present, in-memory stores
// otherwise, so a bare `go run ./cmd/server` gives a fully working instance.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"namewatch/internal/checker"
	"namewatch/internal/checker/cache"
	checkermetrics "namewatch/internal/checker/metrics"
	"namewatch/internal/events"
	"namewatch/internal/lookup"
	"namewatch/internal/monitor"
	monitormetrics "namewatch/internal/monitor/metrics"
	"namewatch/internal/platform/config"
	"namewatch/internal/platform/httpserver"
	"namewatch/internal/platform/logger"
	"namewatch/internal/platform/middleware"
	"namewatch/internal/platform/postgres"
	platformredis "namewatch/internal/platform/redis"
	"namewatch/internal/scheduler"
	"namewatch/internal/watch/handler"
	"namewatch/internal/watch/service"
	"namewatch/internal/watch/store"
)

const shutdownTimeout = 10 * time.Second

// eventStore is what main needs from an event backend: raising, reading and
// retention trimming. Both the in-memory and the Postgres sinks satisfy it.
type eventStore interface {
	events.Sink
	events.Reader
	TrimBefore(ctx context.Context, cutoff time.Time) (int, error)
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Storage.PostgresURL)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	redisClient, err := platformredis.New(ctx, cfg.Storage.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	policy := cache.TTLPolicy{
		Available:  cfg.Cache.AvailableTTL.Std(),
		Registered: cfg.Cache.RegisteredTTL.Std(),
		Unknown:    cfg.Cache.UnknownTTL.Std(),
	}
	var resultCache cache.ResultCache
	var memCache *cache.Memory
	if redisClient != nil {
		resultCache = cache.NewRedis(redisClient.Client, policy)
		log.Info("using redis result cache")
	} else {
		memCache = cache.NewMemory(policy)
		resultCache = memCache
		log.Info("using in-memory result cache")
	}

	var watches store.Store
	var eventBackend eventStore
	if pool != nil {
		pgWatches := store.NewPostgresStore(pool)
		if err := pgWatches.EnsureSchema(ctx); err != nil {
			return err
		}
		pgEvents := events.NewPostgresSink(pool)
		if err := pgEvents.EnsureSchema(ctx); err != nil {
			return err
		}
		watches, eventBackend = pgWatches, pgEvents
		log.Info("using postgres storage")
	} else {
		watches, eventBackend = store.NewInMemoryStore(), events.NewInMemorySink()
		log.Info("using in-memory storage")
	}

	resolver := lookup.New(
		lookup.WithTimeout(cfg.Lookup.Timeout.Std()),
		lookup.WithDNSServer(cfg.Lookup.DNSServer),
		lookup.WithLogger(log),
	)
	check, err := checker.New(resolver, resultCache,
		checker.WithLogger(log),
		checker.WithMetrics(checkermetrics.New()),
	)
	if err != nil {
		return err
	}

	watchSvc, err := service.New(watches, eventBackend, service.WithLogger(log))
	if err != nil {
		return err
	}

	mon, err := monitor.New(watches, check, eventBackend,
		monitor.WithLogger(log),
		monitor.WithMetrics(monitormetrics.New()),
		monitor.WithCycleInterval(cfg.Monitor.CycleInterval.Std()),
		monitor.WithMaxConcurrent(cfg.Monitor.MaxConcurrent),
		monitor.WithExpiryHorizon(cfg.Monitor.ExpiryHorizon.Std()),
		monitor.WithErrorBackoff(cfg.Monitor.ErrorBackoff.Std()),
	)
	if err != nil {
		return err
	}

	sched := scheduler.New(log)
	retention := cfg.Cleanup.EventRetention.Std()
	if err := sched.Add("event-retention", cfg.Cleanup.Schedule, func() error {
		n, err := eventBackend.TrimBefore(context.Background(), time.Now().UTC().Add(-retention))
		if err != nil {
			return err
		}
		log.Info("trimmed old domain events", "removed", n)
		return nil
	}); err != nil {
		return err
	}
	if memCache != nil {
		// Redis expires keys itself; only the in-memory cache needs a sweep.
		if err := sched.Add("cache-sweep", cfg.Cleanup.Schedule, func() error {
			n := memCache.PurgeExpired(context.Background())
			log.Info("purged expired cache entries", "removed", n)
			return nil
		}); err != nil {
			return err
		}
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(middleware.RequestLogger(log))
	router.Get("/healthz", healthz(pool, redisClient))
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1", handler.New(watchSvc, check, log).Register)

	srv := httpserver.New(cfg.Server.Addr, router)

	mon.Start()
	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := mon.Stop(shutdownCtx); err != nil {
		log.Error("monitor shutdown failed", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func healthz(pool *pgxpool.Pool, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				http.Error(w, `{"status":"postgres unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, `{"status":"redis unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
