package tracer

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/trakjobs/trakjobs-go"

// Provider manages the OpenTelemetry tracer provider.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	version    string
	processors []sdktrace.SpanProcessor
}

// WithVersion sets the service.version resource attribute.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// WithSpanProcessor adds a span processor, e.g. a tracetest recorder.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.processors = append(o.processors, sp) }
}

// New creates a tracer provider. A non-empty endpoint ("host:port" or a
// full URL) adds a batching OTLP/HTTP exporter.
func New(serviceName, endpoint string, opts ...Option) (*Provider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(serviceName) == "" {
		serviceName = "trakjobs-cli"
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", serviceName)}
	if o.version != "" {
		attrs = append(attrs, attribute.String("service.version", o.version))
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, sp := range o.processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}

	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		var expOpt otlptracehttp.Option
		if strings.Contains(endpoint, "://") {
			expOpt = otlptracehttp.WithEndpointURL(endpoint)
		} else {
			expOpt = otlptracehttp.WithEndpoint(endpoint)
		}
		exp, err := otlptracehttp.New(context.Background(), expOpt)
		if err != nil {
			return nil, err
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &Provider{tp: tp, tracer: tp.Tracer(instrumentationName)}, nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return p.tracer
}

// Shutdown flushes pending spans and stops the provider. Later calls
// return the first call's result.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.tp.Shutdown(ctx)
	})
	return p.shutdownErr
}

var defaultProvider atomic.Pointer[Provider]

// SetDefault sets the provider used by StartSpan. nil restores no-op spans.
func SetDefault(p *Provider) {
	defaultProvider.Store(p)
}

// Default returns the provider set by SetDefault, or nil.
func Default() *Provider {
	return defaultProvider.Load()
}

// StartSpan starts a span from the default provider. Without one it
// returns ctx unchanged and a no-op span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if p := Default(); p != nil {
		return p.tracer.Start(ctx, name, opts...)
	}
	return ctx, trace.SpanFromContext(context.Background())
}

// EndSpan records err (if any) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
