package wallet

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the wallet backend carrying the
// server's message body. It propagates to the caller unchanged; no retry
// or backoff happens anywhere in this application.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wallet backend: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("wallet backend: status %d", e.StatusCode)
}

// ErrorMessage extracts the backend's message from err, falling back to a
// generic notice for network-layer and unanticipated failures.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
