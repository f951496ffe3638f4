package logger

import (
	"time"

	"go.uber.org/zap"
)

// 일관된 로그 필드를 위한 헬퍼 함수들

// RequestID는 요청 ID 필드를 반환합니다
func RequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

// TraceID는 trace ID 필드를 반환합니다
func TraceID(id string) zap.Field {
	return zap.String("trace_id", id)
}

// SpanID는 span ID 필드를 반환합니다
func SpanID(id string) zap.Field {
	return zap.String("span_id", id)
}

// Action은 transport action 필드를 반환합니다
func Action(action string) zap.Field {
	return zap.String("action", action)
}

// TaskID는 호스트 task ID 필드를 반환합니다
func TaskID(id int64) zap.Field {
	return zap.Int64("task_id", id)
}

// Index는 인덱스명 필드를 반환합니다
func Index(name string) zap.Field {
	return zap.String("index", name)
}

// Shard는 샤드 번호 필드를 반환합니다
func Shard(id int) zap.Field {
	return zap.Int("shard", id)
}

// Role은 primary/replica 역할 필드를 반환합니다
func Role(primary bool) zap.Field {
	if primary {
		return zap.String("role", "primary")
	}
	return zap.String("role", "replica")
}

// ItemCount는 bulk 아이템 수 필드를 반환합니다
func ItemCount(n int) zap.Field {
	return zap.Int("item_count", n)
}

// ElapsedMs는 밀리초 단위 경과 시간 필드를 반환합니다
func ElapsedMs(ms int64) zap.Field {
	return zap.Int64("elapsed_ms", ms)
}

// Duration은 작업 시간 필드를 반환합니다
func Duration(d time.Duration) zap.Field {
	return zap.Duration("duration", d)
}

// DurationMs는 작업 시간을 밀리초로 반환합니다
func DurationMs(d time.Duration) zap.Field {
	return zap.Float64("duration_ms", float64(d.Milliseconds()))
}

// HTTPMethod는 HTTP 메서드 필드를 반환합니다
func HTTPMethod(method string) zap.Field {
	return zap.String("http_method", method)
}

// HTTPPath는 HTTP 경로 필드를 반환합니다
func HTTPPath(path string) zap.Field {
	return zap.String("http_path", path)
}

// HTTPStatus는 HTTP 상태 코드 필드를 반환합니다
func HTTPStatus(status int) zap.Field {
	return zap.Int("http_status", status)
}

// RemoteAddr는 원격 주소 필드를 반환합니다
func RemoteAddr(addr string) zap.Field {
	return zap.String("remote_addr", addr)
}

// ErrorCode는 에러 코드 필드를 반환합니다
func ErrorCode(code string) zap.Field {
	return zap.String("error_code", code)
}

// Component는 컴포넌트명 필드를 반환합니다
func Component(name string) zap.Field {
	return zap.String("component", name)
}

// Enabled는 기능 활성화 여부 필드를 반환합니다
func Enabled(on bool) zap.Field {
	return zap.Bool("enabled", on)
}
