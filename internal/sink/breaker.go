package sink

import (
	"github.com/YouSangSon/shardwatch/internal/pkg/circuitbreaker"
)

// BreakerSink는 계속 실패하는 싱크를 circuit breaker로 잠시 건너뜁니다.
// circuit이 열려 있는 동안 inner는 호출되지 않고 레코드는 버려집니다.
type BreakerSink struct {
	inner Sink
	cb    *circuitbreaker.CircuitBreaker
}

// NewBreakerSink는 inner를 circuit breaker로 감쌉니다
func NewBreakerSink(inner Sink, cfg circuitbreaker.Config) *BreakerSink {
	return &BreakerSink{
		inner: inner,
		cb:    circuitbreaker.New(NameOf(inner), cfg),
	}
}

// Emit은 circuit이 닫혀 있을 때만 inner를 호출합니다
func (s *BreakerSink) Emit(rec Record) error {
	return s.cb.Execute(func() error {
		return SafeEmit(s.inner, rec, nil)
	})
}

// State는 circuit 상태를 반환합니다
func (s *BreakerSink) State() circuitbreaker.State {
	return s.cb.State()
}

func (s *BreakerSink) Name() string { return NameOf(s.inner) }
