package geolib

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics are prometheus collectors for lookups made by chains.
type Metrics struct {
	lookups  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func (m *Metrics) observe(provider string, op Operation, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure

		m.failures.WithLabelValues(provider, KindOf(err).String()).Inc()
	}

	m.lookups.WithLabelValues(provider, string(op), outcome).Inc()
	m.duration.WithLabelValues(provider, string(op)).
		Observe(elapsed.Seconds())
}

// NewMetrics creates and registers collectors in a given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	rv := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geocoder_lookups_total",
			Help: "Total number of lookups made by chain members",
		}, []string{"provider", "operation", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geocoder_failures_total",
			Help: "Total number of failed lookups by error kind",
		}, []string{"provider", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoder_lookup_duration_seconds",
			Help:    "Lookup duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 5},
		}, []string{"provider", "operation"}),
	}

	reg.MustRegister(rv.lookups, rv.failures, rv.duration)

	return rv
}
