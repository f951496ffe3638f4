// Package featuregate는 인터셉션을 켜고 끄는 프로세스 단위 스위치를 제공합니다.
package featuregate

import (
	"sync/atomic"
)

// Gate는 인터셉션 활성화 여부를 알려줍니다. Enabled는 부수효과가 없어야 합니다.
type Gate interface {
	Enabled() bool
}

// IsEnabled는 g.Enabled()를 호출합니다. g가 nil이거나 패닉이 나면 false입니다.
func IsEnabled(g Gate) (enabled bool) {
	if g == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			enabled = false
		}
	}()
	return g.Enabled()
}

// Switch는 atomic.Bool 기반 Gate입니다. zero value는 꺼진 상태입니다.
type Switch struct {
	on atomic.Bool
}

// NewSwitch는 초기값을 지정해 Switch를 생성합니다
func NewSwitch(enabled bool) *Switch {
	s := &Switch{}
	s.on.Store(enabled)
	return s
}

// Enabled는 현재 상태를 반환합니다
func (s *Switch) Enabled() bool {
	return s.on.Load()
}

// Set은 상태를 바꾸고 이전 값을 반환합니다
func (s *Switch) Set(enabled bool) bool {
	return s.on.Swap(enabled)
}

// Enable은 스위치를 켭니다
func (s *Switch) Enable() { s.on.Store(true) }

// Disable은 스위치를 끕니다
func (s *Switch) Disable() { s.on.Store(false) }

// Func는 함수를 Gate로 변환합니다
type Func func() bool

// Enabled는 f()를 호출합니다
func (f Func) Enabled() bool { return f() }

var (
	_ Gate = (*Switch)(nil)
	_ Gate = Func(nil)
)
