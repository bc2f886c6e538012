package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CyclesTotal        prometheus.Counter
	CycleErrorsTotal   prometheus.Counter
	WatchesChecked     prometheus.Counter
	WatchErrorsTotal   prometheus.Counter
	EventsRaisedTotal  *prometheus.CounterVec
	CycleDuration      prometheus.Histogram
	ActiveWatchesGauge prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_monitor_cycles_total",
			Help: "Completed monitor cycles",
		}),
		CycleErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_monitor_cycle_errors_total",
			Help: "Cycles aborted by an orchestration error",
		}),
		WatchesChecked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_monitor_watches_checked_total",
			Help: "Due watches processed",
		}),
		WatchErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namewatch_monitor_watch_errors_total",
			Help: "Watches whose processing failed and was skipped for the cycle",
		}),
		EventsRaisedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namewatch_monitor_events_raised_total",
			Help: "Domain events raised, by kind",
		}, []string{"kind"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "namewatch_monitor_cycle_duration_seconds",
			Help:    "Wall time of one monitor cycle",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		ActiveWatchesGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "namewatch_monitor_active_watches",
			Help: "Active watches seen by the latest cycle",
		}),
	}
}

func (m *Metrics) RecordCycle(seconds float64) {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(seconds)
}

func (m *Metrics) RecordCycleError() {
	if m == nil {
		return
	}
	m.CycleErrorsTotal.Inc()
}

func (m *Metrics) RecordWatchChecked() {
	if m == nil {
		return
	}
	m.WatchesChecked.Inc()
}

func (m *Metrics) RecordWatchError() {
	if m == nil {
		return
	}
	m.WatchErrorsTotal.Inc()
}

func (m *Metrics) RecordEvent(kind string) {
	if m == nil {
		return
	}
	m.EventsRaisedTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetActiveWatches(n int) {
	if m == nil {
		return
	}
	m.ActiveWatchesGauge.Set(float64(n))
}
