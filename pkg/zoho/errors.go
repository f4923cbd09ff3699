package zoho

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from a Zoho API
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Code is the Zoho error code, when the body carried one
	Code string

	// Message is the human-readable error description
	Message string

	// Method and URL identify the failed request
	Method string
	URL    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("zoho: %s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("zoho: %s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPStatus returns the response status code. The retry policy uses
// this to classify transient failures.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// StatusOf extracts the HTTP status from an error chain, if present
func StatusOf(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// IsNotFound returns true if the error is a 404 response
func IsNotFound(err error) bool {
	code, ok := StatusOf(err)
	return ok && code == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 response
func IsUnauthorized(err error) bool {
	code, ok := StatusOf(err)
	return ok && code == http.StatusUnauthorized
}

// IsRateLimited returns true if the error is a 429 response
func IsRateLimited(err error) bool {
	code, ok := StatusOf(err)
	return ok && code == http.StatusTooManyRequests
}
