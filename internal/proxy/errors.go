package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Error represents a failed request against the calendar proxy
type Error struct {
	// Op is the operation that failed (e.g., "list events")
	Op string

	// StatusCode is the HTTP status returned by the proxy, if any
	StatusCode int

	// Message is a stable, user-facing description of the failure
	Message string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("proxy %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("proxy %s: %s", e.Op, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify converts an error returned by the generated Calendar client
// into a proxy Error with a stable message for its status class.
// Non-HTTP errors (network failures, context cancellation) pass through
// with the operation attached.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &Error{Op: op, Message: err.Error(), Err: err}
	}
	return &Error{
		Op:         op,
		StatusCode: gerr.Code,
		Message:    messageForStatus(gerr.Code, gerr.Message),
		Err:        err,
	}
}

// messageForStatus maps an HTTP status to the proxy error taxonomy.
// Auth and permission failures use fixed messages; other classes keep
// the upstream detail.
func messageForStatus(code int, detail string) string {
	switch {
	case code == http.StatusUnauthorized:
		return "Invalid or missing API key"
	case code == http.StatusForbidden:
		return "Operation forbidden or requires confirmation"
	case code >= 500:
		if detail == "" {
			return "Proxy server error"
		}
		return "Proxy server error: " + detail
	case code >= 400:
		if detail == "" {
			return "Bad request"
		}
		return "Bad request: " + detail
	}
	return detail
}

// IsAuth reports whether err is an authentication failure (HTTP 401)
func IsAuth(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports whether err is a permission failure (HTTP 403)
func IsForbidden(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err indicates a missing resource (HTTP 404)
func IsNotFound(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.StatusCode == http.StatusNotFound
}
