package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures, decided once
// at the client boundary when the response is observed.
type ErrorClass string

const (
	// ErrorClassNotFound represents a 404, a permanently absent resource.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassRateLimit represents a 429, provider-imposed and transient.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassHTTP represents any other non-2xx response.
	ErrorClassHTTP ErrorClass = "http"

	// ErrorClassNetwork represents transport/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ProviderError is a request failure carrying the status code and URL.
type ProviderError struct {
	StatusCode int
	Class      ErrorClass
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s error (status %d) for %s: %v",
			e.Class, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("provider %s error (status %d) for %s",
		e.Class, e.StatusCode, e.URL)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx status code to an error class.
func classifyStatus(status int) ErrorClass {
	switch status {
	case 404:
		return ErrorClassNotFound
	case 429:
		return ErrorClassRateLimit
	default:
		return ErrorClassHTTP
	}
}

// shouldRetry determines if an error class is worth retrying.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassNotFound:
		// A missing fixture is permanent; never retried.
		return false
	case ErrorClassRateLimit, ErrorClassHTTP, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether the retry policy may re-attempt after err.
// Errors that are not ProviderErrors default to retryable, matching the
// transport-error case.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return shouldRetry(pe.Class)
	}
	return true
}
