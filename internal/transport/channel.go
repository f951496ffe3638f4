package transport

import (
	"sync"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
)

// Reply variant 이름
const (
	VariantResponse = "response"
	VariantError    = "error"
	VariantRaw      = "raw"
)

// Reply는 채널로 전달된 응답 하나를 담습니다. Variant에 따라 한 필드만 채워집니다.
type Reply struct {
	Variant  string
	Response Response
	Err      error
	Raw      []byte
}

// LocalChannel은 프로세스 내부 디스패치에 쓰는 one-shot 채널입니다.
// 첫 응답만 받아들이고, 이후 응답에는 ErrReplyAlreadySent를 반환합니다.
type LocalChannel struct {
	profile string
	version string

	mu    sync.Mutex
	sent  bool
	reply Reply
	done  chan struct{}
}

// NewLocalChannel은 새 LocalChannel을 생성합니다
func NewLocalChannel(profile, version string) *LocalChannel {
	return &LocalChannel{
		profile: profile,
		version: version,
		done:    make(chan struct{}),
	}
}

func (c *LocalChannel) ProfileName() string { return c.profile }
func (c *LocalChannel) ChannelType() string { return "direct" }
func (c *LocalChannel) Version() string     { return c.version }

// SendResponse는 정상 응답을 기록합니다
func (c *LocalChannel) SendResponse(resp Response) error {
	return c.complete(Reply{Variant: VariantResponse, Response: resp})
}

// SendError는 실패 응답을 기록합니다
func (c *LocalChannel) SendError(err error) error {
	return c.complete(Reply{Variant: VariantError, Err: err})
}

// SendRaw는 raw 응답을 기록합니다. payload는 복사해서 보관합니다.
func (c *LocalChannel) SendRaw(payload []byte) error {
	raw := make([]byte, len(payload))
	copy(raw, payload)
	return c.complete(Reply{Variant: VariantRaw, Raw: raw})
}

func (c *LocalChannel) complete(r Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sent {
		return errors.ErrReplyAlreadySent
	}
	c.sent = true
	c.reply = r
	close(c.done)
	return nil
}

// Done은 응답이 도착하면 닫히는 채널을 반환합니다
func (c *LocalChannel) Done() <-chan struct{} {
	return c.done
}

// Replied는 응답이 이미 전달됐는지 보고합니다
func (c *LocalChannel) Replied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Reply는 전달된 응답을 반환합니다. 응답 전에는 ok가 false입니다.
func (c *LocalChannel) Reply() (Reply, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reply, c.sent
}

var _ Channel = (*LocalChannel)(nil)
