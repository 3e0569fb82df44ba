package panelapi

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons for authentication failures.
const (
	ReasonInvalidCredentials = "invalid credentials"
	ReasonUnexpectedResponse = "unexpected server response"
	ReasonCookieMissing      = "session cookie missing"
	ReasonUserIDUnavailable  = "user id unavailable"
)

// AuthError indicates the login sequence failed.
type AuthError struct {
	Reason string
	Status int // HTTP status of the failing call, 0 if not applicable
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed: %s (status %d)", e.Reason, e.Status)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// LookupError indicates the zone snapshot could not be fetched.
type LookupError struct {
	Domain string
	Status int
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("zone lookup for %s failed with status %d", e.Domain, e.Status)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// WriteError indicates an add or update call was not confirmed by the panel.
type WriteError struct {
	Op     string // "add" or "update"
	Domain string
	Status int
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("record %s for %s failed with status %d", e.Op, e.Domain, e.Status)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Violation is one per-field entry in the panel's validation error envelope.
type Violation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseError is the panel's machine-readable error envelope, returned with
// a code, a message and zero or more per-field violations.
type ResponseError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Violations []Violation `json:"violations"`
}

// Error renders the envelope as a multi-line diagnostic, one line per violation.
func (e *ResponseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "panel error %s: %s", e.Code, e.Message)
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  %s: %s (%s)", v.Path, v.Message, v.Code)
	}
	return b.String()
}

// IsAuthError returns true if the error indicates a failed login sequence.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsLookupError returns true if the error indicates a failed zone fetch.
func IsLookupError(err error) bool {
	var lookupErr *LookupError
	return errors.As(err, &lookupErr)
}

// IsWriteError returns true if the error indicates a failed add or update.
func IsWriteError(err error) bool {
	var writeErr *WriteError
	return errors.As(err, &writeErr)
}
