// Package metrics holds the Prometheus metrics for the analytics module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts visit ingestion by device class.
type Metrics struct {
	VisitsTracked *prometheus.CounterVec
}

// New creates and registers the analytics metrics.
func New() *Metrics {
	return &Metrics{
		VisitsTracked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tapcard_analytics_visits_tracked_total",
			Help: "Total number of card visits recorded, by device class",
		}, []string{"device"}),
	}
}
