package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracerProvider_None(t *testing.T) {
	tp, shutdown, err := NewTracerProvider(context.Background(), TracingConfig{Exporter: ExporterNone})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := NewTracerProvider(context.Background(), TracingConfig{
		ServiceName: "memebase",
		Environment: "test",
		Exporter:    ExporterStdout,
		Writer:      &buf,
	})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "MemeService.Upload")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "MemeService.Upload")
	assert.Contains(t, buf.String(), "memebase")
}

func TestNewTracerProvider_UnknownExporter(t *testing.T) {
	_, _, err := NewTracerProvider(context.Background(), TracingConfig{Exporter: "zipkin"})
	assert.Error(t, err)
}
