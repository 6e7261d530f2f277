package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/maintdesk/maintdesk/internal/api"
	"github.com/maintdesk/maintdesk/internal/rbac"
)

// ErrNotAuthenticated is returned by operations that need a session when none
// is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager orchestrates login, refresh, and logout against one store and one
// API client. Refresh is always explicit; nothing here runs in the
// background.
type Manager struct {
	store  *Store
	client *api.Client
	log    logr.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewManager wires a store to an API client.
func NewManager(store *Store, client *api.Client, log logr.Logger) *Manager {
	return &Manager{
		store:  store,
		client: client,
		log:    log,
		now:    time.Now,
	}
}

// Login authenticates and persists the resulting session. When the token
// response carries no user record, the identity is recovered from the access
// token's claims; if even that fails the session is stored without one and
// Current falls back later.
func (m *Manager) Login(ctx context.Context, username, password string) (*rbac.Identity, error) {
	pair, err := m.client.ObtainToken(ctx, username, password)
	if err != nil {
		return nil, err
	}

	identity := identityFromUser(pair.User)
	if identity == nil {
		identity, err = DecodeIdentity(pair.Access)
		if err != nil {
			m.log.V(1).Info("login response carried no user and the token did not decode",
				"error", err.Error())
			identity = nil
		}
	}
	if identity != nil {
		if exp, err := TokenExpiry(pair.Access); err == nil {
			identity.ExpiresAt = exp
		}
	}

	m.store.Set(Session{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         identity,
	})
	m.log.Info("logged in", "username", username)
	return identity, nil
}

// Refresh exchanges the stored refresh token for a new access token. A
// rejected refresh token clears the whole session; the user must log in
// again. Refresh never runs automatically.
func (m *Manager) Refresh(ctx context.Context) error {
	sess, ok := m.store.Get()
	if !ok || sess.RefreshToken == "" {
		return ErrNotAuthenticated
	}

	access, err := m.client.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		var apiErr *api.APIError
		if errors.Is(err, api.ErrSessionExpired) || errors.As(err, &apiErr) {
			m.store.Clear()
			return fmt.Errorf("refresh token rejected: %w", err)
		}
		// Transport failure: the stored session may still be valid.
		return err
	}

	m.store.SetAccessToken(access)
	if sess.User != nil {
		if exp, err := TokenExpiry(access); err == nil {
			sess.User.ExpiresAt = exp
			m.store.SetUser(sess.User)
		}
	}
	m.log.V(1).Info("access token refreshed")
	return nil
}

// Logout discards the local session. The backend is not told; its tokens
// simply age out.
func (m *Manager) Logout() {
	m.store.Clear()
	m.log.Info("logged out")
}

// Current returns the stored identity. When the session has tokens but no
// cached user record, the identity is decoded from the access token and
// persisted for the next call. Returns ErrNotAuthenticated when no session
// is stored.
func (m *Manager) Current() (*rbac.Identity, error) {
	sess, ok := m.store.Get()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if sess.User != nil {
		return sess.User, nil
	}

	identity, err := DecodeIdentity(sess.AccessToken)
	if err != nil {
		return nil, err
	}
	m.store.SetUser(identity)
	return identity, nil
}

// IsAuthenticated reports whether a live session is stored. A session whose
// access token has expired is cleared and reported absent; a token without an
// exp claim counts as live.
func (m *Manager) IsAuthenticated() bool {
	sess, ok := m.store.Get()
	if !ok {
		return false
	}

	exp, err := TokenExpiry(sess.AccessToken)
	if err != nil {
		m.log.V(1).Info("stored access token is malformed, clearing session", "error", err.Error())
		m.store.Clear()
		return false
	}
	if !exp.IsZero() && !exp.After(m.now()) {
		m.log.V(1).Info("stored access token has expired, clearing session")
		m.store.Clear()
		return false
	}
	return true
}

// identityFromUser lifts the wire user record into an identity, applying role
// normalization. Returns nil for nil.
func identityFromUser(u *api.User) *rbac.Identity {
	if u == nil {
		return nil
	}
	return &rbac.Identity{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        rbac.NormalizeRole(u.Role),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}
