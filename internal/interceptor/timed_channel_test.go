package interceptor_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YouSangSon/shardwatch/internal/interceptor"
	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/YouSangSon/shardwatch/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSink는 sink.Sink의 mock입니다
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Emit(rec sink.Record) error {
	args := m.Called(rec)
	return args.Error(0)
}

func newTimedChannel(inner transport.Channel, clock *fakeClock, s sink.Sink, opts ...interceptor.ChannelOption) *interceptor.TimedChannel {
	opts = append([]interceptor.ChannelOption{
		interceptor.WithChannelClock(clock.Now),
		interceptor.WithChannelSink(s),
	}, opts...)
	return interceptor.WrapChannel(inner, clock.Now(), "orders", 3, 7, true, opts...)
}

func TestTimedChannel_ForwardsMetadata(t *testing.T) {
	// Arrange
	inner := &recordingChannel{}
	ch := interceptor.WrapChannel(inner, time.Now(), "orders", 3, 7, true)

	// Act & Assert
	assert.Equal(t, inner.ProfileName(), ch.ProfileName())
	assert.Equal(t, inner.ChannelType(), ch.ChannelType())
	assert.Equal(t, inner.Version(), ch.Version())
	assert.Same(t, inner, ch.Inner())
	assert.Empty(t, inner.Calls())
	assert.False(t, ch.Completed())
}

func TestTimedChannel_Accessors(t *testing.T) {
	// Arrange
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	// Act
	ch := interceptor.WrapChannel(&recordingChannel{}, start, "logs", 5, 2, false)

	// Assert
	assert.Equal(t, start, ch.StartTime())
	assert.Equal(t, "logs", ch.IndexName())
	assert.Equal(t, 5, ch.ShardID())
	assert.Equal(t, 2, ch.ItemCount())
	assert.False(t, ch.Primary())
}

func TestTimedChannel_SendResponse(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)
	resp := &replication.BulkShardResponse{ShardID: replication.ShardID{Index: "orders", ID: 3}}

	// Act
	clock.Advance(12 * time.Millisecond)
	err := ch.SendResponse(resp)

	// Assert
	require.NoError(t, err)
	calls := inner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SendResponse", calls[0].Method)
	assert.Same(t, resp, calls[0].Arg)

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "orders", records[0].IndexName)
	assert.Equal(t, 3, records[0].ShardID)
	assert.Equal(t, 7, records[0].ItemCount)
	assert.True(t, records[0].Primary)
	assert.Equal(t, int64(12), records[0].ElapsedMillis)
	assert.False(t, records[0].Failed)
	assert.Equal(t, transport.VariantResponse, records[0].Variant)
	assert.True(t, ch.Completed())
}

func TestTimedChannel_SendError(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)
	cause := errors.New("primary shard is not active")

	// Act
	clock.Advance(40 * time.Millisecond)
	err := ch.SendError(cause)

	// Assert
	require.NoError(t, err)
	calls := inner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SendError", calls[0].Method)
	assert.Same(t, cause, calls[0].Arg)

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(40), records[0].ElapsedMillis)
	assert.True(t, records[0].Failed)
	assert.Equal(t, transport.VariantError, records[0].Variant)
}

func TestTimedChannel_SendRaw(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)
	payload := []byte{0x01, 0x02, 0x03}

	// Act
	clock.Advance(time.Millisecond)
	err := ch.SendRaw(payload)

	// Assert
	require.NoError(t, err)
	calls := inner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SendRaw", calls[0].Method)
	assert.Equal(t, payload, calls[0].Arg)

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ElapsedMillis)
	assert.Equal(t, transport.VariantRaw, records[0].Variant)
}

func TestTimedChannel_ReturnsInnerError(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	sendErr := errors.New("connection reset")
	inner := &recordingChannel{sendErr: sendErr}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)

	// Act
	err := ch.SendResponse("ok")

	// Assert
	assert.Same(t, sendErr, err)
	assert.Len(t, rec.Records(), 1)
}

func TestTimedChannel_EmitsOnlyOnce(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)

	// Act
	clock.Advance(5 * time.Millisecond)
	_ = ch.SendResponse("first")
	clock.Advance(5 * time.Millisecond)
	_ = ch.SendError(errors.New("second"))
	_ = ch.SendRaw([]byte("third"))

	// Assert
	assert.Len(t, inner.Calls(), 3)
	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].ElapsedMillis)
	assert.Equal(t, transport.VariantResponse, records[0].Variant)
}

func TestTimedChannel_ConcurrentRepliesEmitOnce(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ch.SendResponse("ok")
		}()
	}
	wg.Wait()

	// Assert
	assert.Len(t, inner.Calls(), 16)
	assert.Len(t, rec.Records(), 1)
}

func TestTimedChannel_ClockGoingBackwardsClampsToZero(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)

	// Act
	clock.Advance(-3 * time.Second)
	err := ch.SendResponse("ok")

	// Assert
	require.NoError(t, err)
	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(0), records[0].ElapsedMillis)
}

func TestTimedChannel_SubMillisecondTruncates(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	rec := &recordingSink{}
	ch := newTimedChannel(inner, clock, rec)

	// Act
	clock.Advance(900 * time.Microsecond)
	_ = ch.SendResponse("ok")

	// Assert
	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(0), records[0].ElapsedMillis)
}

func TestTimedChannel_SinkErrorDoesNotAffectReply(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	ms := new(MockSink)
	sinkErr := errors.New("sink down")
	ms.On("Emit", mock.AnythingOfType("sink.Record")).Return(sinkErr).Once()

	var reported []error
	ch := newTimedChannel(inner, clock, ms, interceptor.WithChannelSinkErrorHandler(func(err error) {
		reported = append(reported, err)
	}))

	// Act
	err := ch.SendResponse("ok")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, inner.Calls(), 1)
	require.Len(t, reported, 1)
	assert.Same(t, sinkErr, reported[0])
	ms.AssertExpectations(t)
}

func TestTimedChannel_SinkPanicDoesNotAffectReply(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	inner := &recordingChannel{}
	panicking := sink.Func(func(sink.Record) error { panic("boom") })

	var reported error
	ch := newTimedChannel(inner, clock, panicking, interceptor.WithChannelSinkErrorHandler(func(err error) {
		reported = err
	}))

	// Act
	var err error
	assert.NotPanics(t, func() {
		err = ch.SendError(errors.New("rejected"))
	})

	// Assert
	assert.NoError(t, err)
	assert.Len(t, inner.Calls(), 1)
	assert.Error(t, reported)
	assert.True(t, ch.Completed())
}

func TestTimedChannel_NilSink(t *testing.T) {
	// Arrange
	inner := &recordingChannel{}
	ch := interceptor.WrapChannel(inner, time.Now(), "orders", 3, 7, true)

	// Act
	err := ch.SendResponse("ok")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, inner.Calls(), 1)
	assert.True(t, ch.Completed())
}
