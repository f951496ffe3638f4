// Package transport는 노드의 inbound 요청 처리 경로를 추상화합니다.
//
// 핸들러는 action 이름으로 등록되고, 요청마다 새 Channel을 받아
// 정확히 한 번 응답합니다. Interceptor는 등록 시점에 핸들러를 감쌀 수 있습니다.
package transport

import (
	"context"
	"time"
)

// Request는 transport를 통해 전달되는 요청입니다
type Request interface {
	// Action은 요청이 디스패치될 transport action 이름입니다
	Action() string
}

// Response는 핸들러가 돌려주는 응답 값입니다
type Response any

// Task는 호스트 런타임의 작업 기록입니다. 인터셉터는 이 값을 읽거나 바꾸지 않습니다.
type Task struct {
	ID           int64
	Action       string
	ParentTaskID string
	StartTime    time.Time
}

// Channel은 핸들러가 응답을 보내는 통로입니다.
// 요청 하나에 응답은 정확히 하나만 보냅니다.
type Channel interface {
	ProfileName() string
	ChannelType() string
	Version() string

	// SendResponse는 정상 응답을 보냅니다
	SendResponse(resp Response) error
	// SendError는 실패 응답을 보냅니다
	SendError(err error) error
	// SendRaw는 이미 직렬화된 응답 바이트를 그대로 보냅니다
	SendRaw(payload []byte) error
}

// Handler는 inbound 요청을 처리합니다
type Handler interface {
	MessageReceived(ctx context.Context, req Request, ch Channel, task *Task) error
}

// HandlerFunc는 함수를 Handler로 변환합니다
type HandlerFunc func(ctx context.Context, req Request, ch Channel, task *Task) error

// MessageReceived는 f(ctx, req, ch, task)를 호출합니다
func (f HandlerFunc) MessageReceived(ctx context.Context, req Request, ch Channel, task *Task) error {
	return f(ctx, req, ch, task)
}

// Interceptor는 핸들러 등록 시점에 핸들러를 감쌉니다
type Interceptor interface {
	InterceptHandler(action string, h Handler) Handler
}
