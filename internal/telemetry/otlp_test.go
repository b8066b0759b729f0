package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_DisabledWithoutEndpoint(t *testing.T) {
	p, err := NewProvider(context.Background(), Options{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_EnabledWithEndpoint(t *testing.T) {
	p, err := NewProvider(context.Background(), Options{Endpoint: "localhost:4318", Insecure: true})
	require.NoError(t, err)
	assert.True(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestFromSDK_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	p := FromSDK(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	_, span := p.Tracer().Start(context.Background(), "list")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "list", ended[0].Name())
	assert.Equal(t, InstrumentationName, ended[0].InstrumentationScope().Name)
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want Options
	}{
		{"", Options{}},
		{"localhost:4318", Options{Endpoint: "localhost:4318", Insecure: true}},
		{"http://collector:4318/", Options{Endpoint: "collector:4318", Insecure: true}},
		{"https://otel.example.com", Options{Endpoint: "otel.example.com"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEndpoint(tt.in), tt.in)
	}
}
