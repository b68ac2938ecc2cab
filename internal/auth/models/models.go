package models

import (
	"strings"
	"time"

	dErrors "tapcard/pkg/domain-errors"
)

// Role is the closed set of permission levels a user record can carry.
// There is no hierarchy between roles; every operation declares its own
// allow-list explicitly.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// ParseRole converts a stored string into a Role, rejecting anything outside
// the closed set so malformed records fail loudly instead of becoming
// unprivileged-but-present identities.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer:
		return RoleViewer, nil
	default:
		return "", dErrors.New(dErrors.CodeInternal, "unknown role: "+s)
	}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// In reports whether r is a member of the allowed set. Total over the enum:
// an invalid role is simply in no set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// User is the account record owned by the Role Store. The subject id is
// assigned by the external identity provider and is immutable; user records
// are provisioned out of band, never on login.
type User struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View returns the redacted representation handed to clients.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Role: u.Role}
}

// UserView is the client-facing projection of a user record.
type UserView struct {
	ID    string `json:"uid"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginRequest carries the identity assertion obtained from the external
// provider's interactive sign-in.
type LoginRequest struct {
	IDToken string `json:"idToken"`
}

func (r *LoginRequest) Normalize() {
	r.IDToken = strings.TrimSpace(r.IDToken)
}

func (r *LoginRequest) Validate() error {
	if r.IDToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "ID token required")
	}
	return nil
}

// LoginResult is the session-issuance response: both credentials plus the
// redacted user view.
type LoginResult struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// RefreshRequest carries the long-lived refresh credential.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshRequest) Normalize() {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
}

func (r *RefreshRequest) Validate() error {
	if r.RefreshToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "refresh token required")
	}
	return nil
}

// RefreshResult returns only the new access credential; the refresh
// credential is not rotated.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
}
