// Package sink는 샤드 bulk 요청의 타이밍 레코드를 받아 내보내는 구현들을 모아둡니다.
//
// 싱크는 응답 경로에서 호출되므로 막히거나 실패가 전파되면 안 됩니다.
// 호출자는 항상 SafeEmit을 통해 싱크를 호출합니다.
package sink

import (
	"fmt"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
)

// Record는 완료된 샤드 bulk 요청 하나의 타이밍 레코드입니다
type Record struct {
	IndexName     string    `json:"index"`
	ShardID       int       `json:"shard"`
	ItemCount     int       `json:"item_count"`
	Primary       bool      `json:"primary"`
	ElapsedMillis int64     `json:"elapsed_ms"`
	Failed        bool      `json:"failed"`
	Variant       string    `json:"variant"`
	StartTime     time.Time `json:"start_time"`
}

// Role은 "primary" 또는 "replica"입니다
func (r Record) Role() string {
	if r.Primary {
		return "primary"
	}
	return "replica"
}

// Elapsed는 경과 시간을 time.Duration으로 반환합니다
func (r Record) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMillis) * time.Millisecond
}

// Sink는 레코드를 내보냅니다. Emit은 빠르게 반환해야 합니다.
type Sink interface {
	Emit(rec Record) error
}

// Named는 메트릭 라벨에 쓸 이름을 가진 싱크입니다
type Named interface {
	Name() string
}

// Func는 함수를 Sink로 변환합니다
type Func func(rec Record) error

// Emit은 f(rec)를 호출합니다
func (f Func) Emit(rec Record) error { return f(rec) }

// NameOf는 싱크 이름을 반환합니다. Named가 아니면 "custom"입니다.
func NameOf(s Sink) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// SafeEmit은 s.Emit(rec)를 호출하고 에러와 패닉을 그 자리에서 흡수합니다.
// 실패하면 onFailure(있다면)에 알리고 에러를 반환하지만, 응답 경로는 이 값을 무시합니다.
func SafeEmit(s Sink, rec Record, onFailure func(error)) (err error) {
	if s == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeSinkUnavailable, "sink %s panicked: %v", NameOf(s), r)
		}
		if err != nil && onFailure != nil {
			func() {
				defer func() { _ = recover() }()
				onFailure(err)
			}()
		}
	}()

	return s.Emit(rec)
}

// Multi는 레코드를 모든 싱크에 보냅니다. 한 싱크가 실패해도 나머지는 계속 호출합니다.
type Multi []Sink

// Emit은 모든 싱크를 호출하고 실패를 합쳐서 반환합니다
func (m Multi) Emit(rec Record) error {
	var errs []error
	for _, s := range m {
		if err := SafeEmit(s, rec, nil); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", NameOf(s), err))
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Name() string { return "multi" }

// Discard는 모든 레코드를 버립니다
var Discard Sink = Func(func(Record) error { return nil })

var (
	_ Sink  = Multi(nil)
	_ Named = Multi(nil)
)
