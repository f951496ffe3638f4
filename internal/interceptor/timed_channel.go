package interceptor

import (
	"sync/atomic"
	"time"

	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/YouSangSon/shardwatch/internal/transport"
)

// TimedChannel은 응답 채널을 감싸 샤드 bulk 요청의 지연 시간을 잽니다.
//
// 모든 메서드는 인자를 바꾸지 않고 inner로 그대로 전달하며 inner의 반환값을
// 그대로 돌려줍니다. 첫 응답 전송 시 한 번만 레코드를 싱크로 보냅니다.
type TimedChannel struct {
	inner     transport.Channel
	startTime time.Time
	indexName string
	shardID   int
	itemCount int
	primary   bool

	now         func() time.Time
	sink        sink.Sink
	onSinkError func(error)

	emitted atomic.Bool
}

// ChannelOption은 TimedChannel 옵션입니다
type ChannelOption func(*TimedChannel)

// WithChannelClock은 응답 시각을 읽을 시계를 지정합니다
func WithChannelClock(now func() time.Time) ChannelOption {
	return func(c *TimedChannel) { c.now = now }
}

// WithChannelSink는 레코드를 받을 싱크를 지정합니다
func WithChannelSink(s sink.Sink) ChannelOption {
	return func(c *TimedChannel) { c.sink = s }
}

// WithChannelSinkErrorHandler는 싱크 실패 알림 함수를 지정합니다
func WithChannelSinkErrorHandler(fn func(error)) ChannelOption {
	return func(c *TimedChannel) { c.onSinkError = fn }
}

// WrapChannel은 inner를 감싼 TimedChannel을 생성합니다. I/O는 하지 않습니다.
func WrapChannel(inner transport.Channel, start time.Time, indexName string, shardID, itemCount int, primary bool, opts ...ChannelOption) *TimedChannel {
	c := &TimedChannel{
		inner:     inner,
		startTime: start,
		indexName: indexName,
		shardID:   shardID,
		itemCount: itemCount,
		primary:   primary,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TimedChannel) ProfileName() string { return c.inner.ProfileName() }
func (c *TimedChannel) ChannelType() string { return c.inner.ChannelType() }
func (c *TimedChannel) Version() string     { return c.inner.Version() }

// SendResponse는 정상 응답을 inner로 전달합니다
func (c *TimedChannel) SendResponse(resp transport.Response) error {
	end := c.now()
	err := c.inner.SendResponse(resp)
	c.complete(end, transport.VariantResponse, false)
	return err
}

// SendError는 실패 응답을 inner로 전달합니다
func (c *TimedChannel) SendError(cause error) error {
	end := c.now()
	err := c.inner.SendError(cause)
	c.complete(end, transport.VariantError, true)
	return err
}

// SendRaw는 raw 응답을 inner로 전달합니다
func (c *TimedChannel) SendRaw(payload []byte) error {
	end := c.now()
	err := c.inner.SendRaw(payload)
	c.complete(end, transport.VariantRaw, false)
	return err
}

// complete는 첫 호출에서만 레코드를 만들어 싱크로 보냅니다
func (c *TimedChannel) complete(end time.Time, variant string, failed bool) {
	if !c.emitted.CompareAndSwap(false, true) {
		return
	}

	elapsed := end.UnixMilli() - c.startTime.UnixMilli()
	if elapsed < 0 {
		elapsed = 0
	}

	_ = sink.SafeEmit(c.sink, sink.Record{
		IndexName:     c.indexName,
		ShardID:       c.shardID,
		ItemCount:     c.itemCount,
		Primary:       c.primary,
		ElapsedMillis: elapsed,
		Failed:        failed,
		Variant:       variant,
		StartTime:     c.startTime,
	}, c.onSinkError)
}

// Inner는 감싼 채널을 반환합니다
func (c *TimedChannel) Inner() transport.Channel { return c.inner }

// StartTime은 채널을 감싼 시각입니다
func (c *TimedChannel) StartTime() time.Time { return c.startTime }

// IndexName은 대상 인덱스 이름입니다
func (c *TimedChannel) IndexName() string { return c.indexName }

// ShardID는 대상 샤드 번호입니다
func (c *TimedChannel) ShardID() int { return c.shardID }

// ItemCount는 bulk 아이템 수입니다
func (c *TimedChannel) ItemCount() int { return c.itemCount }

// Primary는 primary 역할 요청인지 보고합니다
func (c *TimedChannel) Primary() bool { return c.primary }

// Completed는 응답이 한 번이라도 전송됐는지 보고합니다
func (c *TimedChannel) Completed() bool { return c.emitted.Load() }

var _ transport.Channel = (*TimedChannel)(nil)
