package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeStore is a minimal CredentialStore for exercising the client alone.
type fakeStore struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (f *fakeStore) AccessToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", false
	}
	return f.token, true
}

func (f *fakeStore) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared = true
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := &fakeStore{token: "tok-1"}
	return NewClient(srv.URL, store), store
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestDoSendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotAccept string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		respondJSON(w, http.StatusOK, `{}`)
	})

	if err := client.Do(context.Background(), http.MethodGet, "/api/equipment/", nil, nil); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID should be set")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestDoWithoutAuth(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		respondJSON(w, http.StatusOK, `{}`)
	})

	if err := client.Do(context.Background(), http.MethodPost, "/api/auth/token/", map[string]string{"u": "x"}, nil, WithoutAuth()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty with WithoutAuth", gotAuth)
	}
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	hookFired := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusUnauthorized, `{"detail":"token expired"}`)
	}))
	t.Cleanup(srv.Close)

	store := &fakeStore{token: "stale"}
	client := NewClient(srv.URL, store, WithSessionExpiredHook(func() { hookFired = true }))

	err := client.Do(context.Background(), http.MethodGet, "/api/equipment/", nil, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !store.cleared {
		t.Error("401 must clear the credential store")
	}
	if !hookFired {
		t.Error("401 must fire the session-expired hook")
	}
}

func TestForbiddenKeepsSession(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusForbidden, `{"detail":"nope"}`)
	})

	err := client.Do(context.Background(), http.MethodGet, "/api/users/", nil, nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.cleared {
		t.Error("403 must not clear the session")
	}
}

func TestNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, `{"detail":"missing"}`)
	})

	err := client.Do(context.Background(), http.MethodGet, "/api/equipment/99/", nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNoContentSkipsParsing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 204 with no content type and no body.
		w.WriteHeader(http.StatusNoContent)
	})

	var out map[string]any
	if err := client.Do(context.Background(), http.MethodDelete, "/api/equipment/1/", nil, &out); err != nil {
		t.Fatalf("204 should be a clean success, got %v", err)
	}
}

func TestNonJSONResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>login page</html>"))
	})

	var out map[string]any
	err := client.Do(context.Background(), http.MethodGet, "/api/equipment/", nil, &out)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestTolerateText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	var body string
	if err := client.Do(context.Background(), http.MethodGet, "/api/ping/", nil, &body, TolerateText()); err != nil {
		t.Fatal(err)
	}
	if body != "pong" {
		t.Errorf("body = %q, want pong", body)
	}
}

func TestAPIErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"d","message":"m","error":"e"}`, "d"},
		{"message next", `{"message":"m","error":"e"}`, "m"},
		{"error last", `{"error":"e"}`, "e"},
		{"generic fallback", `{"fields":{"name":["required"]}}`, "the request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusBadRequest, tt.body)
			})

			err := client.Do(context.Background(), http.MethodPost, "/api/equipment/", map[string]string{}, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != http.StatusBadRequest {
				t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
			}
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
		})
	}
}

func TestNetworkErrorWrapping(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, &fakeStore{token: "t"})

	err := client.Do(context.Background(), http.MethodGet, "/api/equipment/", nil, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if netErr.Unwrap() == nil {
		t.Error("NetworkError should wrap the transport error")
	}
}

func TestSuccessParsesInto(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"id":7,"name":"Pump"}`)
	})

	var eq Equipment
	if err := client.Do(context.Background(), http.MethodGet, "/api/equipment/7/", nil, &eq); err != nil {
		t.Fatal(err)
	}
	if eq.ID != 7 || eq.Name != "Pump" {
		t.Errorf("unexpected equipment: %+v", eq)
	}
}

func TestMalformedJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"id":`)
	})

	var out map[string]any
	err := client.Do(context.Background(), http.MethodGet, "/api/equipment/", nil, &out)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestPostMultipartLeavesContentTypeToWriter(t *testing.T) {
	var gotContentType string
	var gotProblem string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseMultipartForm(1 << 20)
		gotProblem = r.FormValue("problem_description")
		respondJSON(w, http.StatusCreated, `{"id":1}`)
	})

	fields := map[string]string{"problem_description": "leaking", "priority": ""}
	var out MaintenanceRequest
	err := client.PostMultipart(context.Background(), "/api/maintenance-requests/",
		fields, "image", "leak.jpg", bytes.NewReader([]byte("jpegdata")), &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data; boundary=") {
		t.Errorf("Content-Type = %q, want a multipart boundary", gotContentType)
	}
	if gotProblem != "leaking" {
		t.Errorf("problem_description = %q", gotProblem)
	}
}

func TestResourceFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/equipment/", "equipment"},
		{"/api/equipment/5/", "equipment"},
		{"/api/maintenance-requests/?status=PENDING", "maintenance-requests"},
		{"/api/auth/token/", "auth"},
		{"/", "root"},
	}
	for _, tt := range tests {
		if got := resourceFromPath(tt.path); got != tt.want {
			t.Errorf("resourceFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDecodeListShapes(t *testing.T) {
	bare := json.RawMessage(`[{"id":1},{"id":2}]`)
	items, err := decodeList[Equipment](bare)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("bare array: got %d items, want 2", len(items))
	}

	paged := json.RawMessage(`{"count":1,"next":null,"previous":null,"results":[{"id":3}]}`)
	items, err = decodeList[Equipment](paged)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != 3 {
		t.Errorf("paged envelope: got %+v", items)
	}

	if _, err := decodeList[Equipment](json.RawMessage(`"nope"`)); err == nil {
		t.Error("scalar body should fail")
	}
}
