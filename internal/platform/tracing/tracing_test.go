package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sndot/internal/platform/config"
)

func TestDisabledIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), config.Tracing{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledWithoutExporterRecordsSpans(t *testing.T) {
	p, err := NewProvider(context.Background(), config.Tracing{Enabled: true, Exporter: "none", SampleRate: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	assert.True(t, p.Enabled())

	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), config.Tracing{Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}
