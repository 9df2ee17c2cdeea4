package connection

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
)

// Error codes that mean the bearer token itself is unusable.
const (
	CodeTokenMissing = "AUTH_TOKEN_MISSING"
	CodeTokenInvalid = "AUTH_TOKEN_INVALID"
	CodeTokenExpired = "TOKEN_EXPIRED"
)

// IsTokenProblem reports whether code is one of the token-problem codes.
// Any other 401 (e.g. a permission failure on a valid token) is not.
func IsTokenProblem(code string) bool {
	switch code {
	case CodeTokenMissing, CodeTokenInvalid, CodeTokenExpired:
		return true
	default:
		return false
	}
}

// RequestInterceptor runs on every outgoing request before it is sent.
// It must not fail the request.
type RequestInterceptor func(req *http.Request)

// ResponseInterceptor runs on every response, success or failure.
type ResponseInterceptor func(req *http.Request, resp *Response)

// setHeaders adds the default headers, request id and bearer token.
// A missing token is valid: public endpoints are called without one.
func (c *HTTPClient) setHeaders(req *http.Request) {
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", ulid.Make().String())
	}

	if c.session == nil {
		return
	}
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// invalidateOnTokenProblem clears the session when a 401 carries a
// token-problem code, then redirects to login unless the user is already
// on an authentication route.
func (c *HTTPClient) invalidateOnTokenProblem(req *http.Request, resp *Response) {
	if resp.StatusCode != http.StatusUnauthorized {
		return
	}
	code := apierr.ErrorCode(resp.Body)
	if !IsTokenProblem(code) {
		return
	}

	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			c.logger.Error("clear session after token problem", "code", code, "error", err)
		}
	}
	c.metrics.RecordSessionInvalidation(code)
	c.logger.Warn("session invalidated", "code", code, "path", req.URL.Path)

	if loc := c.nav.Location(); !IsPublicRoute(loc) {
		c.nav.Navigate(LoginRoute)
	}
}
