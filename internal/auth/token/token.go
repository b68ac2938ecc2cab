// Package token issues and validates the two signed session credentials.
//
// Access and refresh credentials are signed with distinct secrets so a token
// of one kind can never validate where the other is expected: the verifier
// for each kind checks against its own secret only, and a cross-namespace
// token fails signature verification.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tapcard/internal/auth/models"
	dErrors "tapcard/pkg/domain-errors"
)

// AccessClaims is the payload of the short-lived access credential. Email and
// role are snapshots at issuance time; enforcement uses the live Role Store
// lookup, not these.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of the long-lived refresh credential. It
// intentionally carries only the subject so a refreshed access credential
// always re-reads the current role from the Role Store.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes for both credential kinds.
// Constructed explicitly and passed by reference; no process-wide state.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Service signs and validates session credentials.
type Service struct {
	cfg   Config
	clock func() time.Time
}

// Option configures a Service instance.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs a token service from explicit configuration.
func NewService(cfg Config, opts ...Option) *Service {
	s := &Service{cfg: cfg, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AccessTTL exposes the configured access credential lifetime.
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// IssueAccessToken signs a new access credential for the given user. The
// embedded email/role are a snapshot of the record at issuance.
func (s *Service) IssueAccessToken(user *models.User) (string, error) {
	now := s.clock()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.cfg.AccessSecret)
}

// IssueRefreshToken signs a new refresh credential for the given subject.
func (s *Service) IssueRefreshToken(subjectID string) (string, error) {
	now := s.clock()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.cfg.RefreshSecret)
}

// ValidateAccessToken verifies a bearer access credential against the access
// secret. Refresh credentials fail here by construction.
func (s *Service) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken verifies a refresh credential against the refresh
// secret. Access credentials fail here by construction.
func (s *Service) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.clock))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return nil
}
