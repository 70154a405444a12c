package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the authentication core.
type Metrics struct {
	// Outcomes counts terminal authentication results by operation and status.
	Outcomes *prometheus.CounterVec

	// DirectoryLatency tracks bind+search duration against the directory.
	DirectoryLatency prometheus.Histogram

	// TokenLatency tracks token-service validation call duration.
	TokenLatency prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dirgate_auth_outcomes_total",
			Help: "Total authentication outcomes by operation and status code",
		}, []string{"operation", "status"}),

		DirectoryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dirgate_directory_duration_seconds",
			Help:    "Duration of directory bind and search operations",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		TokenLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dirgate_token_validation_duration_seconds",
			Help:    "Duration of token service validation calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncOutcome records one terminal outcome. Safe on a nil receiver so tests
// can run without a registry.
func (m *Metrics) IncOutcome(operation, status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(operation, status).Inc()
	}
}

// ObserveDirectoryLatency records one directory round trip.
func (m *Metrics) ObserveDirectoryLatency(d time.Duration) {
	if m != nil {
		m.DirectoryLatency.Observe(d.Seconds())
	}
}

// ObserveTokenLatency records one token-service round trip.
func (m *Metrics) ObserveTokenLatency(d time.Duration) {
	if m != nil {
		m.TokenLatency.Observe(d.Seconds())
	}
}
