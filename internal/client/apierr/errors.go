package apierr

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"syscall"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
)

// User-facing messages.
const (
	MsgConnectivity = "Unable to connect to server. Please check your internet connection."
	MsgFallback     = "An unexpected error occurred. Please try again."
)

// ResponseError is a non-2xx response, returned unchanged by the HTTP client.
type ResponseError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// NormalizedError is the single failure shape handed to callers.
type NormalizedError struct {
	Message     string
	FieldErrors map[string]string // nil when the failure carried none
	StatusCode  int               // 0 when no response was received
	Cause       error
}

func (e *NormalizedError) Error() string {
	return e.Message
}

func (e *NormalizedError) Unwrap() error {
	return e.Cause
}

// HasFieldErrors reports whether any per-field message is present.
func (e *NormalizedError) HasFieldErrors() bool {
	return len(e.FieldErrors) > 0
}

// MapFields returns a copy with every field key passed through rename.
func (e *NormalizedError) MapFields(rename func(string) string) *NormalizedError {
	c := *e
	if e.FieldErrors == nil {
		return &c
	}
	c.FieldErrors = make(map[string]string, len(e.FieldErrors))
	for k, v := range e.FieldErrors {
		c.FieldErrors[rename(k)] = v
	}
	return &c
}

// Normalize converts any failure into a *NormalizedError. It never returns
// nil: a nil err yields the generic fallback.
func Normalize(err error) *NormalizedError {
	if err == nil {
		return &NormalizedError{Message: MsgFallback}
	}

	var ne *NormalizedError
	if errors.As(err, &ne) {
		return ne
	}

	var re *ResponseError
	if errors.As(err, &re) {
		return FromResponse(re.StatusCode, re.Body, err)
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		return &NormalizedError{
			Message:     de.Message,
			FieldErrors: maps.Clone(de.Fields),
			Cause:       err,
		}
	}

	// No response at all.
	msg := err.Error()
	switch {
	case IsNetworkUnreachable(err):
		msg = MsgConnectivity
	case msg == "":
		msg = MsgFallback
	}
	return &NormalizedError{Message: msg, Cause: err}
}

// FromResponse builds the error for a response with the given status and body.
func FromResponse(status int, raw []byte, cause error) *NormalizedError {
	body := ParseBody(raw)

	msg := MsgFallback
	switch body.Kind {
	case BodyText:
		if body.Text != "" {
			msg = body.Text
		}
	case BodyObject:
		if m, ok := body.String("message"); ok {
			msg = m
		} else if m, ok := body.String("error"); ok {
			msg = m
		}
	case BodyEmpty, BodyUnknown:
	}

	return &NormalizedError{
		Message:     msg,
		FieldErrors: fieldErrors(body),
		StatusCode:  status,
		Cause:       cause,
	}
}

// fieldErrors reads the errors object of a body. Array values are reduced
// to their first string element.
func fieldErrors(body Body) map[string]string {
	if body.Kind != BodyObject {
		return nil
	}
	raw, ok := body.Object["errors"].(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]string, len(raw))
	for field, v := range raw {
		switch t := v.(type) {
		case string:
			out[field] = t
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					out[field] = s
					break
				}
			}
		}
	}
	return out
}

// IsNetworkUnreachable reports whether err means the server could not be
// reached: DNS failure, refused or reset connection, TLS failure, or timeout.
func IsNetworkUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var authErr x509.UnknownAuthorityError
	if errors.As(err, &authErr) {
		return true
	}
	var hostErr x509.HostnameError
	return errors.As(err, &hostErr)
}
