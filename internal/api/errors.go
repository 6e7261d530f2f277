package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fixed response classification order. Callers match
// with errors.Is; the wrapping message carries the request context.
var (
	// ErrSessionExpired is returned on 401. The local session has already been
	// cleared by the time the caller sees it.
	ErrSessionExpired = errors.New("session expired: authentication required")

	// ErrForbidden is returned on 403. The session stays intact.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrNotFound is returned on 404.
	ErrNotFound = errors.New("not found")

	// ErrInvalidResponse is returned when a response that should carry JSON
	// carries something else.
	ErrInvalidResponse = errors.New("server returned a non-JSON response")
)

// APIError is a structured backend failure: the HTTP status plus the message
// the server put in its error body (detail, message, or error field).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport-level failure (DNS, refused connection,
// timeout). It is never retried or masked by this layer.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
