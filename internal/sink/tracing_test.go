package sink_test

import (
	"testing"
	"time"

	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTracingSink_Emit(t *testing.T) {
	// Arrange
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := sink.NewTracingSink(tp.Tracer("test"))
	rec := sampleRecord()

	// Act
	err := s.Emit(rec)

	// Assert
	require.NoError(t, err)
	spans := recorder.Ended()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "shard.bulk primary", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, rec.StartTime, span.StartTime())
	assert.Equal(t, rec.StartTime.Add(12*time.Millisecond), span.EndTime())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("shard.index", "orders"))
	assert.Contains(t, span.Attributes(), attribute.Int("shard.id", 3))
	assert.Contains(t, span.Attributes(), attribute.Int("bulk.item_count", 7))
}

func TestTracingSink_FailedRecord(t *testing.T) {
	// Arrange
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := sink.NewTracingSink(tp.Tracer("test"))
	rec := sampleRecord()
	rec.Primary = false
	rec.Failed = true

	// Act
	err := s.Emit(rec)

	// Assert
	require.NoError(t, err)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "shard.bulk replica", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
