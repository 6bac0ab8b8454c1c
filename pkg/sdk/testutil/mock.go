// Package testutil provides testing utilities for the PromptFlow SDK.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// route identifies a handler by method and path, e.g. "POST /api/chats/".
type route string

func routeOf(method, path string) route {
	return route(method + " " + path)
}

// MockServer is an httptest server that dispatches on exact method and
// path and counts every request it sees, matched or not.
type MockServer struct {
	*httptest.Server

	t        *testing.T
	mu       sync.Mutex
	handlers map[route]http.HandlerFunc
	calls    map[route]int
}

// NewMockServer starts a server that answers 404 until handlers are added.
func NewMockServer(t *testing.T) *MockServer {
	ms := &MockServer{
		t:        t,
		handlers: map[route]http.HandlerFunc{},
		calls:    map[route]int{},
	}
	ms.Server = httptest.NewServer(http.HandlerFunc(ms.serve))
	return ms
}

// APIURL is the base URL clients are configured with.
func (ms *MockServer) APIURL() string {
	return ms.URL + "/api"
}

// On registers handler for method and path, replacing any previous one.
func (ms *MockServer) On(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	ms.handlers[routeOf(method, path)] = handler
	ms.mu.Unlock()
}

// OnJSON answers method and path with status and response encoded as JSON.
// A nil response leaves the body empty.
func (ms *MockServer) OnJSON(method, path string, status int, response any) {
	ms.On(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response == nil {
			return
		}
		assert.NoError(ms.t, json.NewEncoder(w).Encode(response), "encode mock response")
	})
}

// OnRaw answers method and path with body exactly as given.
func (ms *MockServer) OnRaw(method, path string, status int, contentType, body string) {
	ms.On(method, path, func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// Calls reports how many requests hit method and path.
func (ms *MockServer) Calls(method, path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.calls[routeOf(method, path)]
}

// TotalCalls reports every request received so far.
func (ms *MockServer) TotalCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var n int
	for _, c := range ms.calls {
		n += c
	}
	return n
}

func (ms *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	key := routeOf(r.Method, r.URL.Path)

	ms.mu.Lock()
	ms.calls[key]++
	handler := ms.handlers[key]
	ms.mu.Unlock()

	if handler == nil {
		ms.t.Logf("mock server: unhandled %s", key)
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// AssertHeader checks a single request header.
func AssertHeader(t *testing.T, r *http.Request, key, expected string) {
	t.Helper()
	assert.Equal(t, expected, r.Header.Get(key), "header %s", key)
}

// AssertJSONBody checks that the request body is JSON equal to expected.
// Key order and whitespace are ignored.
func AssertJSONBody(t *testing.T, r *http.Request, expected any) {
	t.Helper()
	want, err := json.Marshal(expected)
	if !assert.NoError(t, err, "marshal expected body") {
		return
	}
	got := DecodeBody(t, r)
	gotJSON, _ := json.Marshal(got)
	assert.JSONEq(t, string(want), string(gotJSON), "request body")
}

// DecodeBody reads the request body as a JSON object.
func DecodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&body), "decode request body")
	return body
}

// JSONResponse writes data as a JSON body. Call WriteHeader first for a
// status other than 200.
func JSONResponse(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(data), "encode response")
}
