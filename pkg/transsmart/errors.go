package transsmart

import (
	"errors"
	"fmt"
)

// ErrorKind tells which phase of a call failed.
type ErrorKind string

const (
	// KindLogin marks a failed credential exchange.
	KindLogin ErrorKind = "login"
	// KindRequest marks a failed authenticated call.
	KindRequest ErrorKind = "request"
)

// Error is returned when the provider cannot be reached or answers with a non-2xx status.
// Message holds the response body verbatim when a response was received, otherwise the
// transport error text.
type Error struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var phase string
	switch e.Kind {
	case KindLogin:
		phase = "login failed"
	case KindRequest:
		phase = "request failed"
	default:
		phase = string(e.Kind) + " failed"
	}

	if e.StatusCode != 0 {
		return fmt.Sprintf("transsmart %s (HTTP %d): %s", phase, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transsmart %s: %s", phase, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrLoginFailed) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCause attaches the transport error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatusCode records the HTTP status of the failed response.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithRequest records the method and URL of the failed call.
func (e *Error) WithRequest(method, url string) *Error {
	e.Method = method
	e.URL = url
	return e
}

var (
	// ErrLoginFailed matches every login failure.
	ErrLoginFailed = &Error{Kind: KindLogin}

	// ErrRequestFailed matches every failed authenticated call.
	ErrRequestFailed = &Error{Kind: KindRequest}

	// ErrUnknownOperation is returned by Invoke for a name missing from the catalog.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidCall is returned by Invoke when arguments do not fit the endpoint.
	ErrInvalidCall = errors.New("invalid call")
)

// StatusCode returns the HTTP status carried by a provider error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
