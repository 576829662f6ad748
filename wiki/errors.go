package wiki

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication state.
var (
	// ErrNotAuthenticated is returned when a mutating action is attempted
	// without a stored CSRF token. The request is never sent.
	ErrNotAuthenticated = errors.New("not authenticated: call Login before mutating actions")

	// ErrTokenNotFound is returned when login succeeded but the server did
	// not hand out a usable CSRF token (missing field or the anonymous
	// sentinel value "+\\").
	ErrTokenNotFound = errors.New("no CSRF token in server response")
)

// TransportError wraps a network or I/O failure. The core never retries
// these; callers decide.
type TransportError struct {
	Op  string // "get", "post", "upload"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError indicates the response body did not match any expected
// envelope shape. Summary carries enough of the raw body for diagnosis.
type DecodeError struct {
	Summary string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed API response: %s: %v", e.Summary, e.Err)
	}
	return fmt.Sprintf("malformed API response: %s", e.Summary)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoginError is an explicit rejection of the login attempt. Reason is the
// server-provided text when available.
type LoginError struct {
	Reason string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Reason)
}

// APIError is a failure the remote API reported for an otherwise
// well-formed request. Code and Description are the server's own words,
// never paraphrased.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%s]: %s", e.Code, e.Description)
}

// InvalidInputError is a caller-side contract violation detected before any
// network call: unknown operation name, missing mandatory filter, mismatched
// rename lists.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func invalidInputf(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput returns true if err is a caller-side contract violation.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// IsAPIError returns the server-reported error if err carries one.
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
