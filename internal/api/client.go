// Package api wraps the maintenance-ticketing REST backend: one HTTP core
// that injects bearer credentials and classifies responses, plus thin typed
// wrappers per resource. The backend is a black box; this layer never retries
// and never masks a failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/maintdesk/maintdesk/internal/metrics"
	"github.com/maintdesk/maintdesk/internal/telemetry"
)

// maxResponseBytes bounds how much of a response body is read. List payloads
// are small; anything past this is a server bug.
const maxResponseBytes = 4 << 20

// CredentialStore is the slice of the session store the client needs: the
// current bearer token, and invalidation when the backend rejects it.
type CredentialStore interface {
	AccessToken() (string, bool)
	Clear()
}

// Client issues requests against one backend base URL.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	creds            CredentialStore
	log              logr.Logger
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport (tests, custom TLS).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger. Default is logr.Discard().
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSessionExpiredHook registers the SessionExpired signal handler. The UI
// layer uses it to navigate to the login view; it fires after the local
// session has been cleared and before the failing call returns.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// NewClient builds a client for the given base URL. creds may be nil for a
// purely anonymous client.
func NewClient(baseURL string, creds CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		creds:   creds,
		log:     logr.Discard(),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type callOptions struct {
	noAuth       bool
	tolerateText bool
}

// CallOption adjusts a single request.
type CallOption func(*callOptions)

// WithoutAuth issues the request without a bearer header even when a token is
// stored (login, refresh, register).
func WithoutAuth() CallOption {
	return func(o *callOptions) { o.noAuth = true }
}

// TolerateText accepts a non-JSON success body instead of failing with
// ErrInvalidResponse. When out is a *string it receives the raw body.
func TolerateText() CallOption {
	return func(o *callOptions) { o.tolerateText = true }
}

// Do issues one request and decodes the JSON response into out (out may be
// nil). body, when non-nil, is JSON-encoded. Classification follows a fixed
// priority order; see the package errors. Do never retries.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}

	return c.roundTrip(ctx, method, path, contentType, reader, out, options)
}

func (c *Client) get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// PostMultipart uploads a file plus form fields. The content-type header is
// left to the multipart writer so the transport gets the boundary right;
// everything else behaves like Do.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader, out any) error {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to build multipart payload: %w", err)
		}
	}
	fw, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart payload: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return fmt.Errorf("failed to read upload %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to build multipart payload: %w", err)
	}

	return c.roundTrip(ctx, http.MethodPost, path, w.FormDataContentType(), buf, out, callOptions{})
}

func (c *Client) roundTrip(ctx context.Context, method, path, contentType string, payload io.Reader, out any, options callOptions) error {
	target := c.baseURL + path
	resource := resourceFromPath(path)

	ctx, span := telemetry.StartRequestSpan(ctx, method, path, resource)

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		telemetry.EndRequestSpan(span, 0, err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !options.noAuth && c.creds != nil {
		if token, ok := c.creds.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordNetworkFailure(resource, method, time.Since(start))
		telemetry.EndRequestSpan(span, 0, err)
		c.log.V(1).Info("api request failed", "method", method, "path", path, "error", err.Error())
		return &NetworkError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.RecordRequest(resource, method, resp.StatusCode, time.Since(start))

	classifyErr := c.classify(method, path, resp, respBody, out, options)
	telemetry.EndRequestSpan(span, resp.StatusCode, classifyErr)
	c.log.V(1).Info("api request",
		"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start).String())
	return classifyErr
}

// classify applies the response classification ladder, strictly in order:
// 401, 403, 404, 204, content type, server error message, success.
func (c *Client) classify(method, path string, resp *http.Response, respBody []byte, out any, options callOptions) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.expireSession()
		return fmt.Errorf("%s %s: %w", method, path, ErrSessionExpired)
	case http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case http.StatusNoContent:
		// Success with no body; nothing to parse.
		return nil
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		if options.tolerateText && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if sp, ok := out.(*string); ok {
				*sp = string(respBody)
			}
			return nil
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrInvalidResponse)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(respBody),
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: failed to parse response: %w", method, path, ErrInvalidResponse)
	}
	return nil
}

// expireSession invalidates the local session before the failing call
// returns: the caller must re-authenticate, and no partial data escapes.
func (c *Client) expireSession() {
	if c.creds != nil {
		c.creds.Clear()
	}
	metrics.RecordSessionExpiry()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// serverMessage extracts the error message from a JSON error body, checking
// the field names the backend actually uses, in order.
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if v, ok := payload[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return "the request failed"
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

// resourceFromPath reduces a request path to its resource name for metrics
// and span labels: "/api/equipment/5/" → "equipment".
func resourceFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}

// encodeQuery builds a query string from filters, omitting every empty value.
// Returns "" or "?k=v&...".
func encodeQuery(params map[string]string) string {
	vals := url.Values{}
	for k, v := range params {
		if v != "" {
			vals.Set(k, v)
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return "?" + vals.Encode()
}

// decodeList handles both list shapes the backend produces: a bare JSON array
// and the DRF pagination envelope.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse list response: %w", ErrInvalidResponse)
		}
		return items, nil
	}
	var p page[T]
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("failed to parse list response: %w", ErrInvalidResponse)
	}
	return p.Results, nil
}
