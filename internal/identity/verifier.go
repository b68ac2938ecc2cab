// Package identity verifies identity assertions issued by the external
// identity provider after interactive sign-in.
//
// Assertions are RS256 ID tokens verifiable against the provider's published
// x509 signing certificates. Verification is pure: no side effects, one
// bounded certificate fetch when the cache is cold.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "tapcard/pkg/domain-errors"
	"tapcard/pkg/platform/sentinel"
)

// DefaultCertsURL is where Google publishes the signing certificates for
// securetoken ID tokens (the assertion format Firebase clients produce).
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// Claim is the ephemeral result of verifying an assertion. Consumed once per
// login; never persisted.
type Claim struct {
	Subject string
	Email   string
}

// Verifier validates an opaque identity assertion and extracts the stable
// subject id and claims.
type Verifier interface {
	Verify(ctx context.Context, assertion string) (*Claim, error)
}

type assertionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GoogleVerifier verifies securetoken assertions for a single provider
// project. Certificates are cached until their HTTP cache lifetime lapses.
type GoogleVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	clock     func() time.Time

	mu      sync.RWMutex
	certs   map[string]string
	expires time.Time
}

// GoogleOption configures a GoogleVerifier.
type GoogleOption func(*GoogleVerifier)

// WithCertsURL overrides the certificate endpoint (tests, emulators).
func WithCertsURL(url string) GoogleOption {
	return func(v *GoogleVerifier) {
		if url != "" {
			v.certsURL = url
		}
	}
}

// WithHTTPClient overrides the HTTP client used for certificate fetches.
func WithHTTPClient(client *http.Client) GoogleOption {
	return func(v *GoogleVerifier) {
		if client != nil {
			v.client = client
		}
	}
}

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) GoogleOption {
	return func(v *GoogleVerifier) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// NewGoogleVerifier constructs a verifier for the given provider project id.
func NewGoogleVerifier(projectID string, opts ...GoogleOption) *GoogleVerifier {
	v := &GoogleVerifier{
		projectID: projectID,
		certsURL:  DefaultCertsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Verify checks the assertion's signature, expiry, issuer, and audience, and
// extracts the subject id and email. Malformed, expired, or forged assertions
// map to an authentication failure; a certificate-endpoint outage maps to
// sentinel.ErrUnavailable so it is never mistaken for a bad credential.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Claim, error) {
	certs, err := v.signingCerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch signing certs: %v: %w", err, sentinel.ErrUnavailable)
	}

	claims := &assertionClaims{}
	parsed, err := jwt.ParseWithClaims(assertion, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		kid, _ := token.Header["kid"].(string)
		pemCert, ok := certs[kid]
		if !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
	},
		jwt.WithTimeFunc(v.clock),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "identity token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid identity token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid identity token")
	}

	return &Claim{Subject: claims.Subject, Email: claims.Email}, nil
}

func (v *GoogleVerifier) signingCerts(ctx context.Context) (map[string]string, error) {
	v.mu.RLock()
	if v.certs != nil && v.clock().Before(v.expires) {
		certs := v.certs
		v.mu.RUnlock()
		return certs, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.certs != nil && v.clock().Before(v.expires) {
		return v.certs, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cert endpoint returned %d", resp.StatusCode)
	}

	certs := make(map[string]string)
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, fmt.Errorf("decode certs: %w", err)
	}

	v.certs = certs
	v.expires = v.clock().Add(cacheLifetime(resp.Header.Get("Cache-Control")))
	return certs, nil
}

// cacheLifetime extracts max-age from a Cache-Control header, defaulting to
// one hour when absent or malformed.
func cacheLifetime(cacheControl string) time.Duration {
	const fallback = time.Hour
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if after, ok := strings.CutPrefix(directive, "max-age="); ok {
			seconds, err := strconv.Atoi(after)
			if err != nil || seconds <= 0 {
				return fallback
			}
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
