// Package metrics holds the Prometheus metrics for the rate limit module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts rate limiting outcomes.
type Metrics struct {
	Rejected  prometheus.Counter
	CheckErrs prometheus.Counter
}

// New creates and registers the rate limit metrics.
func New() *Metrics {
	return &Metrics{
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		CheckErrs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_ratelimit_check_errors_total",
			Help: "Total number of rate limit checks that failed open",
		}),
	}
}
