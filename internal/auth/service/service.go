// Package service implements session issuance: brokering verified external
// identities into signed application credentials, and refreshing them.
//
// Credentials are bearer tokens, not stored sessions: nothing is persisted
// at issuance, and any instance holding the signing secrets can verify any
// credential. The deliberate tradeoff is one Role Store read per verified
// request instead of a server-side session or revocation table.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"tapcard/internal/auth/metrics"
	"tapcard/internal/auth/models"
	"tapcard/internal/auth/token"
	"tapcard/internal/identity"
	dErrors "tapcard/pkg/domain-errors"
	"tapcard/pkg/platform/audit"
	"tapcard/pkg/platform/sentinel"
	"tapcard/pkg/requestcontext"
)

// UserStore is the Role Store contract the service depends on.
type UserStore interface {
	Get(ctx context.Context, subjectID string) (*models.User, error)
}

// IdentityVerifier validates identity assertions from the external provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*identity.Claim, error)
}

// Service brokers identity-provider sign-ins into application session
// credentials and exchanges refresh credentials for new access credentials.
type Service struct {
	identity IdentityVerifier
	users    UserStore
	tokens   *token.Service
	logger   *slog.Logger
	audits   audit.Publisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New constructs the auth service with its collaborators.
func New(
	verifier IdentityVerifier,
	users UserStore,
	tokens *token.Service,
	logger *slog.Logger,
	audits audit.Publisher,
	m *metrics.Metrics,
) *Service {
	return &Service{
		identity: verifier,
		users:    users,
		tokens:   tokens,
		logger:   logger,
		audits:   audits,
		metrics:  m,
		tracer:   otel.Tracer("tapcard/internal/auth/service"),
	}
}

// Login verifies an identity assertion, resolves the subject's user record,
// and issues both session credentials.
//
// Invalid assertions and unknown subjects collapse to the same externally
// visible failure so callers cannot enumerate which subjects exist; logs and
// audit events carry the precise reason.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	claim, err := s.identity.Verify(ctx, req.IDToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.ErrorContext(ctx, "identity provider unavailable", "error", err)
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity provider unavailable")
		}
		s.loginFailed(ctx, "", "invalid assertion", err)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication failed")
	}

	user, err := s.users.Get(ctx, claim.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// No auto-provisioning: accounts are created out of band.
			s.loginFailed(ctx, claim.Subject, "user not found", err)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication failed")
		}
		return nil, s.storeFailure(ctx, err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign refresh token")
	}

	s.metrics.Logins.Inc()
	s.emit(ctx, audit.SecurityEvent{
		Action:   audit.EventLoginSucceeded,
		Subject:  user.ID,
		Severity: audit.SeverityInfo,
	})
	s.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"subject", user.ID,
		"role", user.Role,
	)

	return &models.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.View(),
	}, nil
}

// Refresh exchanges a valid refresh credential for a new access credential
// without re-running identity verification. The new credential embeds the
// subject's current role, not the role at original login time.
func (s *Service) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Refresh")
	defer span.End()

	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.refreshFailed(ctx, "", "invalid refresh token", err)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid refresh token")
	}

	user, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.refreshFailed(ctx, claims.Subject, "user no longer exists", err)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, s.storeFailure(ctx, err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}

	s.metrics.Refreshes.Inc()
	s.emit(ctx, audit.SecurityEvent{
		Action:   audit.EventTokenRefreshed,
		Subject:  user.ID,
		Severity: audit.SeverityInfo,
	})

	return &models.RefreshResult{AccessToken: accessToken}, nil
}

// Authenticate validates a bearer access credential and re-resolves the
// subject's current record from the Role Store, so out-of-band role changes
// or account deletion take effect within one access-credential lifetime.
// The returned user carries the live role, not the embedded snapshot.
func (s *Service) Authenticate(ctx context.Context, bearerToken string) (*models.User, error) {
	claims, err := s.tokens.ValidateAccessToken(bearerToken)
	if err != nil {
		s.metrics.VerifyFailures.Inc()
		s.emit(ctx, audit.SecurityEvent{
			Action:   audit.EventAuthFailed,
			Reason:   "invalid access token",
			Severity: audit.SeverityWarning,
		})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}

	user, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.VerifyFailures.Inc()
			s.logger.WarnContext(ctx, "verified credential for deleted subject",
				"request_id", requestcontext.RequestID(ctx),
				"subject", claims.Subject,
			)
			s.emit(ctx, audit.SecurityEvent{
				Action:   audit.EventAuthFailed,
				Subject:  claims.Subject,
				Reason:   "subject no longer exists",
				Severity: audit.SeverityWarning,
			})
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
		}
		return nil, s.storeFailure(ctx, err)
	}
	return user, nil
}

// storeFailure surfaces Role Store infrastructure errors as a distinct
// server-side failure so clients do not clear stored credentials needlessly.
func (s *Service) storeFailure(ctx context.Context, err error) error {
	s.logger.ErrorContext(ctx, "role store failure",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "role store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "role store lookup failed")
}

func (s *Service) loginFailed(ctx context.Context, subject, reason string, err error) {
	s.metrics.LoginFailures.Inc()
	s.logger.WarnContext(ctx, "login failed",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"reason", reason,
		"error", err,
	)
	s.emit(ctx, audit.SecurityEvent{
		Action:   audit.EventLoginFailed,
		Subject:  subject,
		Reason:   reason,
		Severity: audit.SeverityWarning,
	})
}

func (s *Service) refreshFailed(ctx context.Context, subject, reason string, err error) {
	s.metrics.RefreshFailures.Inc()
	s.logger.WarnContext(ctx, "refresh failed",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"reason", reason,
		"error", err,
	)
	s.emit(ctx, audit.SecurityEvent{
		Action:   audit.EventRefreshFailed,
		Subject:  subject,
		Reason:   reason,
		Severity: audit.SeverityWarning,
	})
}

func (s *Service) emit(ctx context.Context, event audit.SecurityEvent) {
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.audits.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
