// Package metrics holds the Prometheus metrics for the auth module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts session issuance and verification outcomes.
type Metrics struct {
	Logins          prometheus.Counter
	LoginFailures   prometheus.Counter
	Refreshes       prometheus.Counter
	RefreshFailures prometheus.Counter
	VerifyFailures  prometheus.Counter
}

// New creates and registers the auth metrics.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_auth_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_auth_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
		Refreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_auth_refreshes_total",
			Help: "Total number of successful access token refreshes",
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_auth_refresh_failures_total",
			Help: "Total number of failed refresh attempts",
		}),
		VerifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcard_auth_verify_failures_total",
			Help: "Total number of bearer credentials rejected by the session verifier",
		}),
	}
}
