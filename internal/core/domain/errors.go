package domain

import (
	"maps"
	"strings"
)

// DomainError is a failure detected locally, before or instead of an API
// call. Code has the form TJ-<AREA>-<NNNN>; two errors with the same code
// match under errors.Is regardless of details.
type DomainError struct {
	Code    string
	Message string
	Details string
	// Fields holds per-field messages keyed by form field name.
	Fields map[string]string
	Cause  error
}

// NewDomainError returns an error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Code)
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Cause }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return e.derive(func(c *DomainError) { c.Details = details })
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return e.derive(func(c *DomainError) { c.Cause = cause })
}

// WithFields returns a copy carrying a copy of fields.
func (e *DomainError) WithFields(fields map[string]string) *DomainError {
	return e.derive(func(c *DomainError) { c.Fields = maps.Clone(fields) })
}

// derive copies e, so the package-level sentinels are never mutated.
func (e *DomainError) derive(set func(*DomainError)) *DomainError {
	c := *e
	c.Fields = maps.Clone(e.Fields)
	set(&c)
	return &c
}

var (
	// ErrMissingVendorScope: the session has no vendor id, so
	// vendor-scoped endpoints cannot be addressed.
	ErrMissingVendorScope = NewDomainError("TJ-SCOPE-4000", "Vendor ID not found. Please log in again.")

	ErrNotAuthenticated = NewDomainError("TJ-AUTH-4010", "not logged in")
	// ErrNoAccessToken: a successful login response carried no token.
	ErrNoAccessToken = NewDomainError("TJ-AUTH-5020", "Login response did not include an access token.")

	// ErrValidation carries the failed required-field checks in Fields.
	ErrValidation = NewDomainError("TJ-VAL-4000", "Please correct the highlighted fields.")

	ErrInvalidArgument = NewDomainError("TJ-ARG-1001", "invalid argument")
	ErrMissingArgument = NewDomainError("TJ-ARG-1002", "missing required argument")
)
