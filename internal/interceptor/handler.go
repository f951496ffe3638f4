// Package interceptor는 inbound 핸들러 앞에 붙어 샤드 bulk 쓰기의 응답 채널을
// 타이밍 채널로 바꿔 끼우는 인터셉터를 구현합니다.
//
// 인터셉터는 요청이나 실행 결과를 바꾸지 않습니다. 게이트가 꺼져 있거나 요청이
// 대상이 아니면 원래 채널을 그대로 넘기고, 핸들러의 에러는 가공 없이 반환합니다.
package interceptor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/YouSangSon/shardwatch/internal/featuregate"
	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/YouSangSon/shardwatch/internal/pkg/metrics"
	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/YouSangSon/shardwatch/internal/transport"
	"go.uber.org/zap"
)

// handlerRef는 atomic.Pointer에 인터페이스 값을 담기 위한 상자입니다
type handlerRef struct {
	transport.Handler
}

// Handler는 실제 핸들러를 감싸는 요청 인터셉터입니다
type Handler struct {
	actual atomic.Pointer[handlerRef]

	gate        featuregate.Gate
	now         func() time.Time
	sink        sink.Sink
	metrics     *metrics.Metrics
	onSinkError func(error)
}

// Option은 Handler 옵션입니다
type Option func(*Handler)

// WithSink는 타이밍 레코드를 받을 싱크를 지정합니다
func WithSink(s sink.Sink) Option {
	return func(h *Handler) { h.sink = s }
}

// WithClock은 시작/응답 시각을 읽을 시계를 지정합니다
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithMetrics는 분류 결과와 싱크 실패를 집계할 메트릭을 지정합니다
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// New는 actual을 감싼 Handler를 생성합니다. gate가 nil이면 항상 꺼진 것으로 봅니다.
func New(actual transport.Handler, gate featuregate.Gate, opts ...Option) *Handler {
	h := &Handler{
		gate: gate,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.onSinkError = h.sinkFailed
	h.actual.Store(&handlerRef{actual})
	return h
}

// Rebind는 감싼 핸들러를 원자적으로 교체하고 자기 자신을 반환합니다.
// 진행 중인 호출은 교체 전 핸들러로 끝까지 처리됩니다.
func (h *Handler) Rebind(actual transport.Handler) *Handler {
	h.actual.Store(&handlerRef{actual})
	return h
}

// Actual은 현재 감싸고 있는 핸들러를 반환합니다
func (h *Handler) Actual() transport.Handler {
	return h.actual.Load().Handler
}

// MessageReceived는 유효 채널을 정한 뒤 감싼 핸들러에 위임합니다.
// 감싼 핸들러의 반환값은 그대로 돌려줍니다.
func (h *Handler) MessageReceived(ctx context.Context, req transport.Request, ch transport.Channel, task *transport.Task) error {
	actual := h.actual.Load().Handler
	if actual == nil {
		return errors.ErrHandlerNotFound
	}
	return actual.MessageReceived(ctx, req, h.channelFor(ctx, req, ch), task)
}

// channelFor는 요청에 쓸 채널을 정합니다. 대상이 아니면 ch를 그대로 반환합니다.
func (h *Handler) channelFor(ctx context.Context, req transport.Request, ch transport.Channel) transport.Channel {
	if !featuregate.IsEnabled(h.gate) {
		h.recordDecision(DecisionGateDisabled)
		return ch
	}

	c := Classify(req)
	h.recordDecision(c.Decision)

	if !c.Qualifies() {
		if c.Decision == DecisionUnknownEnvelope {
			logger.Debug(ctx, "unrecognized shard envelope, passing through",
				logger.Component("interceptor"),
				zap.String("request_type", fmt.Sprintf("%T", req)),
			)
		}
		return ch
	}

	return &TimedChannel{
		inner:       ch,
		startTime:   h.now(),
		indexName:   c.IndexName,
		shardID:     c.ShardID,
		itemCount:   c.ItemCount,
		primary:     c.Primary,
		now:         h.now,
		sink:        h.sink,
		onSinkError: h.onSinkError,
	}
}

func (h *Handler) recordDecision(d Decision) {
	if h.metrics != nil {
		h.metrics.RecordDecision(string(d))
	}
}

func (h *Handler) sinkFailed(err error) {
	name := sink.NameOf(h.sink)
	if h.metrics != nil {
		h.metrics.RecordSinkFailure(name)
	}
	logger.Debug(context.Background(), "timing record dropped",
		logger.Component("interceptor"),
		zap.String("sink", name),
		zap.Error(err),
	)
}

var _ transport.Handler = (*Handler)(nil)
