package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the service rejects the session token
// and re-authentication also fails.
var ErrSessionExpired = errors.New("session expired")

// TransportError reports that a request could not be completed: network
// failure, authentication rejection, or a server-side error status. A zero
// StatusCode means no HTTP response was received.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return e.Endpoint + ": request failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports that a successful response lacked an expected
// field, so callers can tell "service unreachable" from "service responded
// unexpectedly".
type ValidationError struct {
	Endpoint string
	Field    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: response missing expected field %q", e.Endpoint, e.Field)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
