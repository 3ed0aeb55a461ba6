package tiered

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/onair/pkg/tree"
)

// Metrics holds the Prometheus collectors of a Cache.
// A nil *Metrics records nothing.
type Metrics struct {
	lookups       *prometheus.CounterVec // tier, result (hit/miss)
	loads         *prometheus.CounterVec // result (store/shared/error/stale)
	loadDuration  prometheus.Histogram
	loadedLocales prometheus.Gauge
	invalidations *prometheus.CounterVec // scope (locale/all)
}

// NewMetrics creates the cache collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onair",
			Name:      "lookups_total",
			Help:      "Translation lookups by answering tier and result",
		}, []string{"tier", "result"}),

		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onair",
			Name:      "loads_total",
			Help:      "Locale loads by source or failure",
		}, []string{"result"}),

		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "onair",
			Name:      "load_duration_seconds",
			Help:      "Locale load duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),

		loadedLocales: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "onair",
			Name:      "loaded_locales",
			Help:      "Locales currently held in memory",
		}),

		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onair",
			Name:      "invalidations_total",
			Help:      "Cache invalidations by scope",
		}, []string{"scope"}),
	}

	if reg != nil {
		reg.MustRegister(m.lookups, m.loads, m.loadDuration, m.loadedLocales, m.invalidations)
	}

	return m
}

func (m *Metrics) lookup(tier tree.Tier, found bool) {
	if m == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	m.lookups.WithLabelValues(tier.String(), result).Inc()
}

func (m *Metrics) observeLoad(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(d.Seconds())
}

func (m *Metrics) setLoaded(n int) {
	if m == nil {
		return
	}
	m.loadedLocales.Set(float64(n))
}

func (m *Metrics) invalidated(scope string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(scope).Inc()
}
