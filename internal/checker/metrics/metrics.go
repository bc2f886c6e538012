package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ChecksTotal         *prometheus.CounterVec
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	LookupFailuresTotal *prometheus.CounterVec
	LookupDuration      prometheus.Histogram
	SharedLookupsTotal  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namewatch_checks_total",
			Help: "Total availability checks served, by resulting status",
		}, []string{"status"}),
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_check_cache_hits_total",
			Help: "Checks answered from the result cache",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_check_cache_misses_total",
			Help: "Checks that required a registry lookup",
		}),
		LookupFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namewatch_lookup_failures_total",
			Help: "Registry lookups that failed, by failure kind",
		}, []string{"kind"}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "namewatch_lookup_duration_seconds",
			Help:    "Wall time of probe plus registry lookup",
			Buckets: prometheus.DefBuckets,
		}),
		SharedLookupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_shared_lookups_total",
			Help: "Checks that piggybacked on an in-flight lookup for the same domain",
		}),
	}
}

func (m *Metrics) RecordCheck(status string) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordLookupFailure(kind string) {
	if m == nil {
		return
	}
	m.LookupFailuresTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveLookupDuration(seconds float64) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(seconds)
}

func (m *Metrics) RecordSharedLookup() {
	if m == nil {
		return
	}
	m.SharedLookupsTotal.Inc()
}
