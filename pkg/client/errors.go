package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRateLimited is returned when a request is rate limited twice in a
	// row (the single retry also received HTTP 429).
	ErrRateLimited = errors.New("rate limited after retry")

	// ErrContextCancelled is returned when the context is cancelled during
	// the rate-limit wait.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassAuth represents credential failures (HTTP 401/403).
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassRateLimit represents HTTP 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassValidation represents payload validation failures detected
	// before any request is sent.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassTransport represents DNS/TLS/connection errors.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassServer represents any other non-2xx response.
	ErrorClassServer ErrorClass = "server"
)

// APIError is a request failure with vendor context attached.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Code       int // vendor error code from the response body, if any
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("api %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorClassAuth
	case statusCode == 429:
		return ErrorClassRateLimit
	default:
		return ErrorClassServer
	}
}
