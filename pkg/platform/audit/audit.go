// Package audit defines security audit events and the publisher contract.
// Domain services emit events; sinks (Kafka, no-op) fan them out. Publishing
// is best-effort and must never fail the request being audited.
package audit

import (
	"context"
	"time"
)

// Severity classifies an event for downstream alerting.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Security event actions emitted by the auth service.
const (
	EventLoginSucceeded   = "login_succeeded"
	EventLoginFailed      = "login_failed"
	EventTokenRefreshed   = "token_refreshed"
	EventRefreshFailed    = "refresh_failed"
	EventAuthFailed       = "auth_failed"
	EventForbiddenAccess  = "forbidden_access"
	EventRateLimitTripped = "rate_limit_tripped"
)

// SecurityEvent captures a security-relevant action. Keep it
// transport-agnostic so sinks can fan out.
type SecurityEvent struct {
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers security events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event SecurityEvent) error
}

// NopPublisher drops all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, SecurityEvent) error { return nil }
