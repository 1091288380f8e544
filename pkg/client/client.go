// Package client provides the authenticated OVH API transport: request
// signing, timeouts and error decoding. It knows nothing about caching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API transport operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ovhcli_requests_total",
		Help: "Total OVH API requests by method and status",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ovhcli_request_duration_seconds",
		Help:    "OVH API request duration in seconds by method",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ovhcli_errors_total",
		Help: "Total OVH API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Default timeouts.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
)

// Config holds the transport configuration.
type Config struct {
	ApplicationKey    string
	ApplicationSecret string
	ConsumerKey       string

	// Endpoint is an alias from Endpoints or a literal base URL
	Endpoint string

	// ConnectTimeout bounds TCP connection setup
	ConnectTimeout time.Duration

	// Timeout bounds the whole request including reading the body
	Timeout time.Duration

	// UserAgent header (optional)
	UserAgent string
}

// Client performs signed requests against the OVH API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger

	timeDelta  int64
	deltaKnown bool
	now        func() time.Time
}

// New creates a new API client. Missing credentials are reported before any
// request can be attempted.
func New(cfg Config) (*Client, error) {
	var missing []string
	if cfg.ApplicationKey == "" {
		missing = append(missing, "applicationKey")
	}
	if cfg.ApplicationSecret == "" {
		missing = append(missing, "applicationSecret")
	}
	if cfg.ConsumerKey == "" {
		missing = append(missing, "consumerKey")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	baseURL, err := ResolveEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = cfg.ConnectTimeout

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL: baseURL,
		config:  cfg,
		logger:  log.With().Str("component", "ovh-transport").Logger(),
		now:     time.Now,
	}, nil
}

// Do performs a signed request and returns the raw JSON body.
//
// path must already be escaped; query is only sent for GET requests by the
// proxy but is honoured for any method. body is sent verbatim.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body []byte) (json.RawMessage, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}()

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	timestamp, err := c.serverTime(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("X-Ovh-Application", c.config.ApplicationKey)
	req.Header.Set("X-Ovh-Consumer", c.config.ConsumerKey)
	req.Header.Set("X-Ovh-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Ovh-Signature", sign(c.config.ApplicationSecret, c.config.ConsumerKey, method, fullURL, body, timestamp))
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, respBody)
		apiErr.Method = method
		apiErr.Path = path
		errorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()

		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.ErrorClass)).
			Msg("API request error")
		return nil, apiErr
	}

	return json.RawMessage(respBody), nil
}

// Time returns the API server clock.
func (c *Client) Time(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/time", nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Ovh-Application", c.config.ApplicationKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return time.Time{}, fmt.Errorf("GET /auth/time: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return time.Time{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := decodeError(resp.StatusCode, body)
		apiErr.Method = http.MethodGet
		apiErr.Path = "/auth/time"
		return time.Time{}, apiErr
	}

	seconds, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse server time %q: %w", body, err)
	}
	return time.Unix(seconds, 0), nil
}

// serverTime returns the current timestamp adjusted to the API clock.
// The delta is fetched once per client.
func (c *Client) serverTime(ctx context.Context) (int64, error) {
	if !c.deltaKnown {
		server, err := c.Time(ctx)
		if err != nil {
			return 0, fmt.Errorf("sync clock with API: %w", err)
		}
		c.timeDelta = server.Unix() - c.now().Unix()
		c.deltaKnown = true
		c.logger.Debug().Int64("delta", c.timeDelta).Msg("Clock delta computed")
	}
	return c.now().Unix() + c.timeDelta, nil
}

// decodeError builds an APIError from a failed response body.
func decodeError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		ErrorClass: classifyStatus(statusCode),
	}

	var payload struct {
		Message string `json:"message"`
		Class   string `json:"class"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		apiErr.RemoteClass = payload.Class
		return apiErr
	}

	apiErr.Message = http.StatusText(statusCode)
	if apiErr.Message == "" {
		apiErr.Message = "unexpected API response"
	}
	return apiErr
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
