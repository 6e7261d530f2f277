// Package session owns the client-held session: the persisted token pair and
// cached user record, the fallback identity decode, and the login/refresh/
// logout orchestration.
//
// Persistence is a flat string key/value table (the browser client kept the
// same three keys in local storage). The store is always injected, never
// ambient, so tests and embedding apps pick their own backend.
package session

import (
	"encoding/json"
	"sync"

	"github.com/go-logr/logr"

	"github.com/maintdesk/maintdesk/internal/rbac"
)

// Persisted keys. Values are strings only; the user record is JSON-encoded.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// KV is the flat string key/value backend behind a Store.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemKV is an in-memory KV for tests and short-lived embedders.
type MemKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemKV returns an empty in-memory backend.
func NewMemKV() *MemKV {
	return &MemKV{m: make(map[string]string)}
}

func (k *MemKV) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok
}

func (k *MemKV) Set(key, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
}

func (k *MemKV) Delete(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
}

// Session is the client-held record of the current authenticated user and
// their credentials. User may be nil when only the tokens are known.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *rbac.Identity
}

// Store owns the persisted session. All reads and writes go through it; a
// session is present exactly when an access token is stored.
type Store struct {
	mu  sync.Mutex
	kv  KV
	log logr.Logger
}

// NewStore wraps the given backend. Pass logr.Discard() when no logging is
// wanted.
func NewStore(kv KV, log logr.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Set persists the whole session, replacing whatever was stored before.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kv.Set(keyAccessToken, sess.AccessToken)
	s.kv.Set(keyRefreshToken, sess.RefreshToken)
	if sess.User != nil {
		b, err := json.Marshal(sess.User)
		if err != nil {
			// Identity is a plain struct; this cannot fail in practice.
			s.log.Error(err, "failed to encode user record, dropping it")
			s.kv.Delete(keyUser)
			return
		}
		s.kv.Set(keyUser, string(b))
	} else {
		s.kv.Delete(keyUser)
	}
}

// SetAccessToken replaces only the access token, keeping the refresh token
// and cached user (used after a manual refresh).
func (s *Store) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv.Set(keyAccessToken, token)
}

// SetUser replaces only the cached user record (used after a fallback decode).
func (s *Store) SetUser(u *rbac.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.kv.Delete(keyUser)
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		s.log.Error(err, "failed to encode user record, dropping it")
		s.kv.Delete(keyUser)
		return
	}
	s.kv.Set(keyUser, string(b))
}

// Get returns the stored session. The second return is false when no session
// is present (no access token). Get never fails: a malformed cached user
// record is treated as absent and removed so the next read starts clean.
func (s *Store) Get() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, ok := s.kv.Get(keyAccessToken)
	if !ok || access == "" {
		return Session{}, false
	}

	sess := Session{AccessToken: access}
	if refresh, ok := s.kv.Get(keyRefreshToken); ok {
		sess.RefreshToken = refresh
	}
	if raw, ok := s.kv.Get(keyUser); ok && raw != "" {
		var u rbac.Identity
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.V(1).Info("cached user record is corrupt, clearing it", "error", err.Error())
			s.kv.Delete(keyUser)
		} else {
			sess.User = &u
		}
	}
	return sess, true
}

// Clear removes every persisted key. After Clear, Get reports absent; no
// partial state is observable.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv.Delete(keyAccessToken)
	s.kv.Delete(keyRefreshToken)
	s.kv.Delete(keyUser)
}

// AccessToken reports the stored bearer token, if any. This satisfies the API
// client's credential-source interface.
func (s *Store) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv.Get(keyAccessToken)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
