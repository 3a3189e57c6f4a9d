package modexia

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/modexia/client-go/internal/api"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrInvalidAmount is returned when a transfer amount is not positive.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrMissingRecipient is returned when a transfer has no recipient address.
	ErrMissingRecipient = errors.New("recipient address is required")

	// ErrUnauthorized is returned when the API key is invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired API key")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ModexiaError is implemented by all SDK errors.
type ModexiaError interface {
	error
	ModexiaError() // marker method
}

// AuthError indicates the server rejected the API key: a 401 or 403
// response, or a failed construction-time validation probe. Requests that
// fail this way are never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unauthorized: %s", e.Message)
	}
	return "unauthorized"
}

// Is implements errors.Is for sentinel error matching.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ModexiaError implements the ModexiaError interface.
func (e *AuthError) ModexiaError() {}

// PaymentError indicates the server handled the request and reported a
// business failure: insufficient funds, a rejected transfer, a transfer
// that reached the FAILED state, or any non-auth 4xx response. Requests
// that fail this way are never retried.
type PaymentError struct {
	// StatusCode is the HTTP status, or 0 when the failure came from a
	// 2xx payload or a polled transaction state.
	StatusCode int
	Message    string
	// TxID identifies the transaction when the server assigned one.
	TxID      string
	RequestID string
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment error: %s", e.Message)
	}
	return fmt.Sprintf("payment error: HTTP %d", e.StatusCode)
}

// ModexiaError implements the ModexiaError interface.
func (e *PaymentError) ModexiaError() {}

// NetworkError indicates a connection failure, a timeout, or a transient
// server error that survived every retry attempt.
type NetworkError struct {
	Err      error
	URL      string
	Attempts int
	// StatusCode is the last HTTP status observed, or 0 when the failure
	// never produced a response.
	StatusCode int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *NetworkError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// ModexiaError implements the ModexiaError interface.
func (e *NetworkError) ModexiaError() {}

// ValidationError reports input rejected locally, before any request is
// sent. Callers can rely on it to mean "never sent" as opposed to "sent
// but failed".
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

// Unwrap returns the sentinel describing the failed check.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ModexiaError implements the ModexiaError interface.
func (e *ValidationError) ModexiaError() {}

// wrapError converts internal API errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		wrapped := &NetworkError{
			Err:      netErr.Err,
			URL:      netErr.URL,
			Attempts: netErr.Attempts,
		}
		var apiErr *api.Error
		if errors.As(netErr.Err, &apiErr) {
			wrapped.StatusCode = apiErr.StatusCode
		}
		return wrapped
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
			}
		}
		return &PaymentError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			RequestID:  apiErr.RequestID,
		}
	}

	return err
}
