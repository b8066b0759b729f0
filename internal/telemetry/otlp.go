// Package telemetry sets up request tracing. Spans are exported over
// OTLP/HTTP when OTEL_EXPORTER_OTLP_ENDPOINT is set; otherwise a no-op
// tracer is used.
package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer used for API calls.
const InstrumentationName = "boardview/api"

// DefaultServiceName is used when no service name is configured.
const DefaultServiceName = "boardview"

// Provider owns the tracer provider for the process.
type Provider struct {
	sdk    *sdktrace.TracerProvider // nil when disabled
	tracer oteltrace.Tracer
}

// Options configures NewProvider.
type Options struct {
	Endpoint    string // host:port of the OTLP/HTTP collector; empty disables export
	ServiceName string
	Insecure    bool
}

// NewProvider creates an exporting provider when opts.Endpoint is set and a
// no-op one otherwise. The provider is also installed as otel's global.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	if opts.Endpoint == "" {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(InstrumentationName)}, nil
	}

	exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{
		sdk:    tp,
		tracer: tp.Tracer(InstrumentationName),
	}, nil
}

// FromSDK wraps an existing SDK provider. Tests use it with a span recorder.
func FromSDK(tp *sdktrace.TracerProvider) *Provider {
	return &Provider{sdk: tp, tracer: tp.Tracer(InstrumentationName)}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.sdk != nil
}

// Tracer returns the tracer for API calls. Safe on a nil Provider.
func (p *Provider) Tracer() oteltrace.Tracer {
	if p == nil || p.tracer == nil {
		return noop.NewTracerProvider().Tracer(InstrumentationName)
	}
	return p.tracer
}

// Shutdown flushes and closes the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}

// ParseEndpoint accepts either host:port or a URL for the collector, as
// OTEL_EXPORTER_OTLP_ENDPOINT is commonly set both ways. Plain host:port and
// http:// URLs are insecure.
func ParseEndpoint(raw string) Options {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "https://"):
		return Options{Endpoint: strings.TrimSuffix(strings.TrimPrefix(raw, "https://"), "/")}
	case strings.HasPrefix(raw, "http://"):
		raw = strings.TrimPrefix(raw, "http://")
	}
	return Options{Endpoint: strings.TrimSuffix(raw, "/"), Insecure: raw != ""}
}
