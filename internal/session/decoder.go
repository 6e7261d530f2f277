package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maintdesk/maintdesk/internal/rbac"
)

// DecodeError reports a structurally invalid access token during fallback
// identity recovery: wrong segment count, or a payload segment that is not
// valid base64url JSON.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot decode access token: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot decode access token: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// tokenClaims is the claim → field mapping for the backend's access tokens.
// user_id is the canonical subject claim; id is the legacy spelling some
// token builds used. Absent claims take the documented defaults below.
type tokenClaims struct {
	jwt.RegisteredClaims

	UserID      int64  `json:"user_id"`
	LegacyID    int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DecodeIdentity reconstructs a user record from the access token's payload
// segment without verifying the signature — verification is the backend's
// job; this is the client's last resort when the login response carried no
// user record.
//
// Defaults for absent claims: role → user, username → "user", name fields →
// username, staff/superuser flags → false. Pure function: no I/O, no side
// effects; the caller decides whether to persist the result.
func DecodeIdentity(accessToken string) (*rbac.Identity, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil, &DecodeError{Reason: "malformed token", Err: err}
	}

	id := claims.UserID
	if id == 0 {
		id = claims.LegacyID
	}

	username := claims.Username
	if username == "" {
		username = "user"
	}
	firstName := claims.FirstName
	if firstName == "" {
		firstName = username
	}

	u := &rbac.Identity{
		ID:          id,
		Username:    username,
		Email:       claims.Email,
		FirstName:   firstName,
		LastName:    claims.LastName,
		Role:        rbac.NormalizeRole(claims.Role),
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Time
	}
	return u, nil
}

// TokenExpiry returns the token's exp claim. The zero time means the token
// carries no expiry.
func TokenExpiry(accessToken string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, &DecodeError{Reason: "malformed token", Err: err}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
