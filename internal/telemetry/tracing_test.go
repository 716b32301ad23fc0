package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/Noah170803/eventio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TracingConfig
	}{
		{"sample rate too high", config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 1.5}},
		{"negative sample rate", config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: -0.1}},
		{"unknown exporter", config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1}},
		{"otlp without endpoint", config.TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitTracing(context.Background(), tt.cfg, "test")
			assert.Error(t, err)
		})
	}
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := initTracing(ctx, config.TracingConfig{Enabled: true, Exporter: "stdout", ServiceName: "eventio-test", SampleRate: 1}, "v1", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "unit-span")
	span.End()

	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "unit-span")
	assert.Contains(t, buf.String(), "eventio-test")
}

func TestInitTracingNoneExporter(t *testing.T) {
	restoreGlobals(t)

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 0.5}, "v1")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
