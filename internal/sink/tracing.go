package sink

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingSink는 레코드마다 이미 끝난 span 하나를 기록합니다.
// span 시작/종료 시각은 레코드의 시작 시각과 경과 시간에서 계산합니다.
type TracingSink struct {
	tracer trace.Tracer
}

// NewTracingSink는 새 TracingSink를 생성합니다
func NewTracingSink(tracer trace.Tracer) *TracingSink {
	return &TracingSink{tracer: tracer}
}

// Emit은 레코드를 span으로 기록합니다
func (s *TracingSink) Emit(rec Record) error {
	_, span := s.tracer.Start(context.Background(), "shard.bulk "+rec.Role(),
		trace.WithTimestamp(rec.StartTime),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("shard.index", rec.IndexName),
			attribute.Int("shard.id", rec.ShardID),
			attribute.String("shard.role", rec.Role()),
			attribute.Int("bulk.item_count", rec.ItemCount),
			attribute.String("reply.variant", rec.Variant),
		),
	)

	if rec.Failed {
		span.SetStatus(codes.Error, "shard bulk request failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(rec.StartTime.Add(rec.Elapsed())))
	return nil
}

func (s *TracingSink) Name() string { return "tracing" }
