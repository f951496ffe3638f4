package interceptor

import (
	"sync"

	"github.com/YouSangSon/shardwatch/internal/featuregate"
	"github.com/YouSangSon/shardwatch/internal/transport"
)

// TransportInterceptor는 transport.Service에 등록되는 모든 핸들러를 Handler로 감쌉니다.
// 같은 action이 다시 등록되면 새 Handler를 만들지 않고 기존 Handler를 Rebind합니다.
type TransportInterceptor struct {
	gate featuregate.Gate
	opts []Option

	mu      sync.Mutex
	wrapped map[string]*Handler
}

// NewTransportInterceptor는 새 TransportInterceptor를 생성합니다
func NewTransportInterceptor(gate featuregate.Gate, opts ...Option) *TransportInterceptor {
	return &TransportInterceptor{
		gate:    gate,
		opts:    opts,
		wrapped: make(map[string]*Handler),
	}
}

// InterceptHandler는 transport.Interceptor를 구현합니다
func (t *TransportInterceptor) InterceptHandler(action string, h transport.Handler) transport.Handler {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.wrapped[action]; ok {
		if transport.Handler(existing) == h {
			return existing
		}
		return existing.Rebind(h)
	}

	w := New(h, t.gate, t.opts...)
	t.wrapped[action] = w
	return w
}

// Handler는 action에 대해 만든 Handler를 반환합니다
func (t *TransportInterceptor) Handler(action string) (*Handler, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.wrapped[action]
	return h, ok
}

var _ transport.Interceptor = (*TransportInterceptor)(nil)
