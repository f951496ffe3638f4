package interceptor_test

import (
	"context"
	"sync"
	"time"

	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/YouSangSon/shardwatch/internal/transport"
)

// fakeClock은 테스트에서 시간을 직접 움직이는 시계입니다
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// channelCall은 recordingChannel이 받은 호출 하나입니다
type channelCall struct {
	Method string
	Arg    any
}

// recordingChannel은 받은 호출을 순서대로 기록합니다
type recordingChannel struct {
	mu      sync.Mutex
	calls   []channelCall
	sendErr error
}

func (c *recordingChannel) record(method string, arg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, channelCall{Method: method, Arg: arg})
	return c.sendErr
}

func (c *recordingChannel) Calls() []channelCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]channelCall, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *recordingChannel) ProfileName() string { return "bulk-profile" }
func (c *recordingChannel) ChannelType() string { return "netty" }
func (c *recordingChannel) Version() string     { return "8.11.0" }

func (c *recordingChannel) SendResponse(resp transport.Response) error {
	return c.record("SendResponse", resp)
}

func (c *recordingChannel) SendError(err error) error {
	return c.record("SendError", err)
}

func (c *recordingChannel) SendRaw(payload []byte) error {
	return c.record("SendRaw", payload)
}

// recordingSink는 받은 레코드를 모아둡니다
type recordingSink struct {
	mu      sync.Mutex
	records []sink.Record
}

func (s *recordingSink) Emit(rec sink.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *recordingSink) Records() []sink.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sink.Record, len(s.records))
	copy(out, s.records)
	return out
}

// capturingHandler는 받은 채널을 저장하고 reply를 실행합니다
type capturingHandler struct {
	mu    sync.Mutex
	got   transport.Channel
	reply func(ch transport.Channel) error
}

func (h *capturingHandler) MessageReceived(_ context.Context, _ transport.Request, ch transport.Channel, _ *transport.Task) error {
	h.mu.Lock()
	h.got = ch
	h.mu.Unlock()
	if h.reply != nil {
		return h.reply(ch)
	}
	return nil
}

func (h *capturingHandler) Channel() transport.Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.got
}

func bulkRequest(index string, shard, items int) *replication.BulkShardRequest {
	reqItems := make([]replication.BulkItemRequest, items)
	for i := range reqItems {
		reqItems[i] = replication.BulkItemRequest{ID: i, OpType: replication.OpIndex, DocID: "doc"}
	}
	return replication.NewBulkShardRequest(replication.ShardID{Index: index, ID: shard}, replication.RefreshNone, reqItems...)
}

func primaryBulk(index string, shard, items int) *replication.ConcreteShardRequest {
	return replication.NewPrimaryRequest(bulkRequest(index, shard, items), "alloc-1", 1)
}

func replicaBulk(index string, shard, items int) *replication.ConcreteReplicaRequest {
	return replication.NewReplicaRequest(bulkRequest(index, shard, items), "alloc-2", 1, 10, 10)
}

// foreignEnvelope는 ShardEnvelope 모양이지만 알려진 봉투 타입이 아닙니다
type foreignEnvelope struct {
	inner transport.Request
}

func (f *foreignEnvelope) Action() string            { return "indices:data/write/foreign[s]" }
func (f *foreignEnvelope) Inner() transport.Request { return f.inner }
