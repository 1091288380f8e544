package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrMissingCredentials is returned by New when a credential is empty.
	ErrMissingCredentials = errors.New("missing API credentials")
)

// APIError is a non-2xx answer from the OVH API.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Method     string
	Path       string

	// Message is the "message" field of the response body, or the HTTP
	// status text when the body could not be parsed.
	Message string

	// RemoteClass is the "class" field of the response body (e.g. "Client::NotFound").
	RemoteClass string

	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s (status %d): %v", e.Method, e.Path, e.Message, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// classifyStatus categorizes an HTTP status code for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
