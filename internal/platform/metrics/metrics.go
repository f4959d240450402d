package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DiscoveriesSubmitted prometheus.Counter
	Moderations          *prometheus.CounterVec
	SearchDuration       prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DiscoveriesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "astrarium_discoveries_submitted_total",
			Help: "Total number of discovery dossiers submitted",
		}),
		Moderations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "astrarium_moderations_total",
			Help: "Total number of moderation decisions by resulting status",
		}, []string{"decision"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "astrarium_search_duration_seconds",
			Help:    "Latency of catalog searches",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
