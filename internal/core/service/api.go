package service

import (
	"context"
	"io"
	"net/url"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/client/connection"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// API is the request surface services need; *connection.HTTPClient
// implements it.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*connection.Response, error)
	Post(ctx context.Context, path string, body any) (*connection.Response, error)
	Put(ctx context.Context, path string, body any) (*connection.Response, error)
	Delete(ctx context.Context, path string) (*connection.Response, error)
	PostMultipart(ctx context.Context, path, field, filename string, file io.Reader) (*connection.Response, error)
}

// Option configures a service.
type Option func(*options)

type options struct {
	logger logger.Logger
	nav    connection.Navigator
}

func buildOptions(opts []Option) options {
	o := options{logger: logger.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNavigator sets where Logout sends the user.
func WithNavigator(nav connection.Navigator) Option {
	return func(o *options) { o.nav = nav }
}

// fail normalizes err and renames wire field keys through fields.
func fail(log logger.Logger, op string, err error, fields fieldTable) error {
	ne := apierr.Normalize(err).MapFields(fields.UI)
	log.Debug("api error", "op", op, "status", ne.StatusCode, "message", ne.Message, "fields", ne.FieldErrors)
	return ne
}

// message returns the string "message" of a JSON object body, or def.
func message(body []byte, def string) string {
	v, err := decodeJSON(body)
	if err != nil {
		return def
	}
	if obj, ok := v.(map[string]any); ok {
		if s, ok := obj["message"].(string); ok && s != "" {
			return s
		}
	}
	return def
}
