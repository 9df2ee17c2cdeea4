package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/infra/buildinfo"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/metric"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/tracer"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.trakjobs.com/api/v1"

// DefaultTimeout bounds every request, including reading the body.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

// SessionStore is the part of the session store the client needs.
type SessionStore interface {
	Token() (string, bool)
	Clear() error
}

// HTTPClient provides HTTP communication with the TrakJobs API.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	session   SessionStore
	nav       Navigator
	limiter   *rate.Limiter
	metrics   *metric.Registry
	logger    logger.Logger
	userAgent string

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout overrides the 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithTLSConfig sets the TLS configuration, e.g. custom root CAs.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		if cfg == nil {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		c.client.Transport = transport
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithNavigator sets the navigator redirected on token problems.
func WithNavigator(nav Navigator) Option {
	return func(c *HTTPClient) {
		if nav != nil {
			c.nav = nav
		}
	}
}

// WithMetrics records request metrics on reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *HTTPClient) { c.metrics = reg }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRequestInterceptor appends an interceptor run after the built-in one.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *HTTPClient) {
		c.requestInterceptors = append(c.requestInterceptors, fn)
	}
}

// WithResponseInterceptor appends an interceptor run after the built-in one.
func WithResponseInterceptor(fn ResponseInterceptor) Option {
	return func(c *HTTPClient) {
		c.responseInterceptors = append(c.responseInterceptors, fn)
	}
}

// NewHTTPClient creates a client for baseURL. An empty baseURL uses
// DefaultBaseURL; a baseURL without scheme gets https://.
func NewHTTPClient(baseURL string, session SessionStore, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: normalizeBaseURL(baseURL),
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		session:   session,
		nav:       nopNavigator{},
		logger:    logger.Default(),
		userAgent: buildinfo.UserAgent(),
	}
	c.requestInterceptors = []RequestInterceptor{c.setHeaders}
	c.responseInterceptors = []ResponseInterceptor{c.invalidateOnTokenProblem}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeBaseURL(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return DefaultBaseURL
	}
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}
	return strings.TrimRight(server, "/")
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string     // relative to the base URL, e.g. "/auth/login"
	Query  url.Values // optional
	Body   any        // JSON-encoded when non-nil

	// RawBody and ContentType send a pre-encoded body instead of Body.
	RawBody     io.Reader
	ContentType string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do sends req. A 2xx response is returned as is; any other status is
// returned as *apierr.ResponseError after the response interceptors ran.
// When no response arrives the transport error is returned.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	route := RouteLabel(req.Path)

	ctx, span := tracer.StartSpan(ctx, req.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", route),
		))
	resp, err := c.do(ctx, req, route, span)
	tracer.EndSpan(span, err)
	return resp, err
}

func (c *HTTPClient) do(ctx context.Context, req Request, route string, span trace.Span) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body := req.RawBody
	if body == nil && req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	for _, intercept := range c.requestInterceptors {
		intercept(httpReq)
	}

	requestID := httpReq.Header.Get("X-Request-ID")
	span.SetAttributes(attribute.String("http.request.id", requestID))
	log := c.logger.WithContext(logger.WithRequestID(ctx, requestID))

	c.metrics.IncInFlight()
	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	elapsed := time.Since(start)
	c.metrics.DecInFlight()
	c.metrics.ObserveRequestDuration(req.Method, route, elapsed.Seconds())

	if err != nil {
		c.metrics.RecordRequest(req.Method, route, "error")
		log.Debug("api request failed", "method", req.Method, "path", req.Path, "duration", elapsed, "error", err)
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		c.metrics.RecordRequest(req.Method, route, "error")
		return nil, fmt.Errorf("read response: %w", err)
	}

	status := strconv.Itoa(httpResp.StatusCode)
	c.metrics.RecordRequest(req.Method, route, status)
	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))
	log.Debug("api request", "method", req.Method, "path", req.Path, "status", httpResp.StatusCode, "duration", elapsed)

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}
	for _, intercept := range c.responseInterceptors {
		intercept(httpReq, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierr.ResponseError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       resp.Body,
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// PostMultipart uploads one file as multipart/form-data under field.
func (c *HTTPClient) PostMultipart(ctx context.Context, path, field, filename string, file io.Reader) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	return c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     &buf,
		ContentType: w.FormDataContentType(),
	})
}

// RouteLabel replaces path segments holding ids with ":id" so metric and
// span names stay low-cardinality.
func RouteLabel(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.ContainsAny(s, "0123456789") {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}
