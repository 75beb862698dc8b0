package remote

import "errors"

var (
	// ErrUnavailable indicates the API server could not be reached.
	ErrUnavailable = errors.New("planning api unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("planning api request timed out")

	// ErrUnexpectedStatus indicates a non-2xx response.
	ErrUnexpectedStatus = errors.New("planning api returned unexpected status")

	// ErrNotConfigured indicates a client without a base URL.
	ErrNotConfigured = errors.New("planning api url not configured")
)
