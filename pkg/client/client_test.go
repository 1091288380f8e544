package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/Sternrassler/ovh-cli/internal/testutil"
)

var testCredentials = Config{
	ApplicationKey:    "AK",
	ApplicationSecret: "AS",
	ConsumerKey:       "CK",
}

// newTestClient returns a client pointed at mock with a fixed local clock.
func newTestClient(t *testing.T, mock *testutil.MockOVH, local time.Time) *Client {
	t.Helper()

	cfg := testCredentials
	cfg.Endpoint = mock.URL()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.now = func() time.Time { return local }
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError error
		errorMsg    string
	}{
		{
			name:   "valid config with alias",
			config: Config{ApplicationKey: "a", ApplicationSecret: "b", ConsumerKey: "c", Endpoint: "ovh-ca"},
		},
		{
			name:   "valid config with default endpoint",
			config: Config{ApplicationKey: "a", ApplicationSecret: "b", ConsumerKey: "c"},
		},
		{
			name:        "missing consumer key",
			config:      Config{ApplicationKey: "a", ApplicationSecret: "b"},
			expectError: ErrMissingCredentials,
		},
		{
			name:        "missing everything",
			config:      Config{},
			expectError: ErrMissingCredentials,
		},
		{
			name:     "unknown endpoint",
			config:   Config{ApplicationKey: "a", ApplicationSecret: "b", ConsumerKey: "c", Endpoint: "ovh-mars"},
			errorMsg: `unknown endpoint "ovh-mars"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)
			switch {
			case tt.expectError != nil:
				if !errors.Is(err, tt.expectError) {
					t.Errorf("New() error = %v, want %v", err, tt.expectError)
				}
			case tt.errorMsg != "":
				if err == nil || err.Error() != tt.errorMsg {
					t.Errorf("New() error = %v, want %q", err, tt.errorMsg)
				}
			default:
				if err != nil {
					t.Fatalf("New() unexpected error = %v", err)
				}
				if c.httpClient.Timeout != DefaultTimeout {
					t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
				}
			}
		})
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		expected string
	}{
		{"", "https://eu.api.ovh.com/1.0"},
		{"ovh-eu", "https://eu.api.ovh.com/1.0"},
		{"ovh-us", "https://api.us.ovhcloud.com/1.0"},
		{"kimsufi-ca", "https://ca.api.kimsufi.com/1.0"},
		{"soyoustart-eu", "https://eu.api.soyoustart.com/1.0"},
		{"https://api.example.test/1.0/", "https://api.example.test/1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := ResolveEndpoint(tt.endpoint)
			if err != nil {
				t.Fatalf("ResolveEndpoint(%q) error = %v", tt.endpoint, err)
			}
			if got != tt.expected {
				t.Errorf("ResolveEndpoint(%q) = %q, want %q", tt.endpoint, got, tt.expected)
			}
		})
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		url      string
		body     string
		expected string
	}{
		{
			name:     "get without body",
			method:   "GET",
			url:      "https://eu.api.ovh.com/1.0/me",
			expected: "$1$2bb81c13bcb1eea93ff50b12bd571dc7699f3913",
		},
		{
			name:     "post with body",
			method:   "POST",
			url:      "https://eu.api.ovh.com/1.0/ip/1.2.3.4%2F32/reverse",
			body:     `{"reverse":"host.example.com."}`,
			expected: "$1$3555f9b657ab5ea924ade5ad92504a59304dec93",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sign("AS", "CK", tt.method, tt.url, []byte(tt.body), 1700000000)
			if got != tt.expected {
				t.Errorf("sign() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDo_SignsRequest(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()

	local := time.Unix(1700000000, 0)
	mock.ServerTime = local.Add(42 * time.Second)
	mock.SetJSON(http.MethodGet, "/me", `{"nichandle":"xx1234-ovh"}`)

	c := newTestClient(t, mock, local)

	body, err := c.Do(context.Background(), http.MethodGet, "/me", nil, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(body) != `{"nichandle":"xx1234-ovh"}` {
		t.Errorf("body = %s", body)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	h := reqs[0].Header

	wantTS := strconv.FormatInt(local.Unix()+42, 10)
	if got := h.Get("X-Ovh-Timestamp"); got != wantTS {
		t.Errorf("X-Ovh-Timestamp = %q, want %q", got, wantTS)
	}
	if got := h.Get("X-Ovh-Application"); got != "AK" {
		t.Errorf("X-Ovh-Application = %q, want AK", got)
	}
	if got := h.Get("X-Ovh-Consumer"); got != "CK" {
		t.Errorf("X-Ovh-Consumer = %q, want CK", got)
	}
	wantSig := sign("AS", "CK", http.MethodGet, mock.URL()+"/me", nil, local.Unix()+42)
	if got := h.Get("X-Ovh-Signature"); got != wantSig {
		t.Errorf("X-Ovh-Signature = %q, want %q", got, wantSig)
	}
}

func TestDo_QueryBodyAndEscapedPath(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()

	mock.SetJSON(http.MethodPost, "/ip/1.2.3.0%2F24/reverse", `{"ipReverse":"1.2.3.4"}`)
	mock.SetJSON(http.MethodGet, "/ip", `["1.2.3.0/24"]`)

	c := newTestClient(t, mock, time.Now())
	ctx := context.Background()

	payload := []byte(`{"ipReverse":"1.2.3.4","reverse":"host.example.com."}`)
	if _, err := c.Do(ctx, http.MethodPost, "/ip/1.2.3.0%2F24/reverse", nil, payload); err != nil {
		t.Fatalf("POST error = %v", err)
	}
	if _, err := c.Do(ctx, http.MethodGet, "/ip", url.Values{"type": {"failover"}}, nil); err != nil {
		t.Fatalf("GET error = %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	if reqs[0].Body != string(payload) {
		t.Errorf("POST body = %q, want %q", reqs[0].Body, payload)
	}
	if reqs[0].Path != "/ip/1.2.3.0%2F24/reverse" {
		t.Errorf("POST path = %q, want escaped slash", reqs[0].Path)
	}
	if reqs[1].Query != "type=failover" {
		t.Errorf("GET query = %q, want type=failover", reqs[1].Query)
	}
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		response      testutil.MockResponse
		expectedClass ErrorClass
		expectedMsg   string
	}{
		{
			name:          "not found with message",
			response:      testutil.NewErrorResponse(http.StatusNotFound, "Client::NotFound", "This service does not exist"),
			expectedClass: ErrorClassClient,
			expectedMsg:   "This service does not exist",
		},
		{
			name:          "server error without json",
			response:      testutil.MockResponse{StatusCode: http.StatusServiceUnavailable, Body: "maintenance"},
			expectedClass: ErrorClassServer,
			expectedMsg:   "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockOVH()
			defer mock.Close()
			mock.SetResponse(http.MethodGet, "/dedicated/server/ns1", tt.response)

			c := newTestClient(t, mock, time.Now())
			_, err := c.Do(context.Background(), http.MethodGet, "/dedicated/server/ns1", nil, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.ErrorClass != tt.expectedClass {
				t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, tt.expectedClass)
			}
			if apiErr.Message != tt.expectedMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.expectedMsg)
			}
			if apiErr.Method != http.MethodGet || apiErr.Path != "/dedicated/server/ns1" {
				t.Errorf("request = %s %s", apiErr.Method, apiErr.Path)
			}
			if mock.GetRequestCount() != 1 {
				t.Errorf("requests = %d, want exactly 1 (no retry)", mock.GetRequestCount())
			}
		})
	}
}

func TestDo_Timeout(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	mock.SetResponse(http.MethodGet, "/slow", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{}`,
		Delay:      500 * time.Millisecond,
	})

	cfg := testCredentials
	cfg.Endpoint = mock.URL()
	cfg.Timeout = 50 * time.Millisecond
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Do(context.Background(), http.MethodGet, "/slow", nil, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("timeout should not be an APIError, got %v", apiErr)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()

	c := newTestClient(t, mock, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, http.MethodGet, "/me", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTime(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	mock.ServerTime = time.Unix(1700000123, 0)

	c := newTestClient(t, mock, time.Now())
	got, err := c.Time(context.Background())
	if err != nil {
		t.Fatalf("Time() error = %v", err)
	}
	if !got.Equal(mock.ServerTime) {
		t.Errorf("Time() = %v, want %v", got, mock.ServerTime)
	}
}
