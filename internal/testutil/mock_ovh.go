// Package testutil provides testing utilities for the OVH API client.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// RecordedRequest is a request seen by the mock server.
type RecordedRequest struct {
	Method string
	// Path is the escaped request path as sent on the wire
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// MockOVH is a configurable mock OVH API server for testing.
//
// Handlers are keyed by method and escaped path, e.g. "GET /dedicated/server".
// GET /auth/time is always answered with ServerTime.
type MockOVH struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	requests []RecordedRequest

	// ServerTime is returned by /auth/time
	ServerTime time.Time
}

// NewMockOVH creates a new mock API server.
func NewMockOVH() *MockOVH {
	mock := &MockOVH{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		ServerTime: time.Now(),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/auth/time" {
			mock.mu.RLock()
			ts := mock.ServerTime.Unix()
			mock.mu.RUnlock()
			w.Write([]byte(strconv.FormatInt(ts, 10)))
			return
		}

		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.EscapedPath()

		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		handler, exists := mock.handlers[key]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"class":"Client::NotFound","message":"The requested object (` + r.URL.Path + `) does not exist"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockOVH) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockOVH) Close() {
	m.server.Close()
}

// Reset clears the recorded requests.
func (m *MockOVH) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a method and escaped path.
func (m *MockOVH) SetHandler(method, path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method+" "+path] = handler
}

// SetResponse configures a simple response for a method and escaped path.
func (m *MockOVH) SetResponse(method, path string, resp MockResponse) {
	m.SetHandler(method, path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON answers method+path with 200 and body.
func (m *MockOVH) SetJSON(method, path, body string) {
	m.SetResponse(method, path, MockResponse{StatusCode: http.StatusOK, Body: body})
}

// Requests returns a copy of the recorded requests, excluding /auth/time.
func (m *MockOVH) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server,
// excluding /auth/time.
func (m *MockOVH) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// CountFor returns the number of requests for a method and escaped path.
func (m *MockOVH) CountFor(method, path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// NewErrorResponse creates an OVH-style error response.
func NewErrorResponse(status int, class, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       `{"class":"` + class + `","message":"` + message + `"}`,
	}
}
