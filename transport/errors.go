// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transport

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned by the first request when no API token could be
// discovered from the environment, the token files, or the configuration.
var ErrNoToken = errors.New("no ADS API token found (set ADS_API_TOKEN or write ~/.ads/token)")

// APIError is a non-2xx response from the API. Message carries the server's
// "error" field when the body was JSON, otherwise the raw body text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API responded with HTTP %d: %s", e.StatusCode, e.Message)
}

// ParseError is a 2xx response whose body could not be interpreted, for
// example JSON missing the expected envelope keys. Retrying will not help.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is structurally invalid user input: a bad bibcode, a bad
// email, an unknown permission or export format, and the like. The request
// is never sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
