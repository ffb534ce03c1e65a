// Package metrics exposes Prometheus collectors for the transfer engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the engine's counters. A nil *Metrics is a valid
// no-op sink, so unit tests do not need a registry.
type Metrics struct {
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	providerFailures   *prometheus.CounterVec
	fallbackRates      prometheus.Counter
	transfersSubmitted prometheus.Counter
	pollsTotal         prometheus.Counter
	notifications      *prometheus.CounterVec
	activeTasks        prometheus.Gauge
}

// New registers all collectors with reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "remitflow_rate_cache_hits_total",
			Help: "Fresh rate cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "remitflow_rate_cache_misses_total",
			Help: "Rate cache misses or stale entries.",
		}),
		providerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "remitflow_rate_provider_failures_total",
			Help: "Failed rate provider calls.",
		}, []string{"provider"}),
		fallbackRates: factory.NewCounter(prometheus.CounterOpts{
			Name: "remitflow_rate_fallbacks_total",
			Help: "Rate lookups answered by a fallback source.",
		}),
		transfersSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "remitflow_transfers_submitted_total",
			Help: "Transfers submitted to the backend.",
		}),
		pollsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "remitflow_status_polls_total",
			Help: "Individual status poll attempts.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "remitflow_notifications_total",
			Help: "Notifications pushed to chats.",
		}, []string{"kind"}),
		activeTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "remitflow_polling_tasks_active",
			Help: "Transactions currently tracked by the poller.",
		}),
	}
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) ProviderFailure(provider string) {
	if m != nil {
		m.providerFailures.WithLabelValues(provider).Inc()
	}
}

func (m *Metrics) FallbackRate() {
	if m != nil {
		m.fallbackRates.Inc()
	}
}

func (m *Metrics) TransferSubmitted() {
	if m != nil {
		m.transfersSubmitted.Inc()
	}
}

func (m *Metrics) Poll() {
	if m != nil {
		m.pollsTotal.Inc()
	}
}

func (m *Metrics) Notification(kind string) {
	if m != nil {
		m.notifications.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SetActiveTasks(n int) {
	if m != nil {
		m.activeTasks.Set(float64(n))
	}
}
