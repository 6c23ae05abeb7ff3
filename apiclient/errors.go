package apiclient

import (
	"errors"
	"fmt"
)

// TransportError means the request never got an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError means the server did not answer within the client timeout.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int               `json:"-"`
	Kind    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

type timeout interface {
	Timeout() bool
}

// classify turns agent errors into TimeoutError or TransportError.
func classify(errs []error) error {
	err := errors.Join(errs...)
	var t timeout
	if errors.As(err, &t) && t.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &TransportError{Err: err}
}
