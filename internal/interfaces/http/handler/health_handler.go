package handler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/circuitbreaker"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc는 의존성 하나의 상태를 확인합니다
type CheckFunc func(ctx context.Context) error

type dependency struct {
	name     string
	critical bool
	check    CheckFunc
}

// HealthHandler는 헬스체크 핸들러입니다.
// critical 의존성이 실패하면 unhealthy, 그 외 의존성이 실패하면 degraded입니다.
type HealthHandler struct {
	version string
	timeout time.Duration

	mu    sync.RWMutex
	deps  []dependency
	ready atomic.Bool
}

// NewHealthHandler는 새로운 HealthHandler를 생성합니다
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version: version,
		timeout: 2 * time.Second,
	}
}

// AddCheck는 의존성 체크를 등록합니다
func (h *HealthHandler) AddCheck(name string, critical bool, check CheckFunc) *HealthHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deps = append(h.deps, dependency{name: name, critical: critical, check: check})
	return h
}

// SetReady는 서버가 트래픽을 받을 준비가 되었는지 표시합니다
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse는 헬스체크 응답입니다
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck는 개별 의존성 체크 결과입니다
type HealthCheck struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Duration float64 `json:"duration_ms"`
}

// Health는 모든 의존성을 확인합니다
func (h *HealthHandler) Health(c *gin.Context) {
	response := h.run(c.Request.Context(), false)

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// Ready는 critical 의존성만 확인합니다 (Kubernetes readiness probe)
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "server is starting",
		})
		return
	}

	response := h.run(c.Request.Context(), true)
	if response.Status == StatusUnhealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"checks": response.Checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": response.Timestamp,
	})
}

func (h *HealthHandler) run(ctx context.Context, criticalOnly bool) HealthResponse {
	h.mu.RLock()
	deps := append([]dependency(nil), h.deps...)
	h.mu.RUnlock()

	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    make(map[string]HealthCheck, len(deps)),
	}

	for _, dep := range deps {
		if criticalOnly && !dep.critical {
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		start := time.Now()
		err := dep.check(checkCtx)
		cancel()

		result := HealthCheck{
			Status:   StatusHealthy,
			Duration: float64(time.Since(start).Milliseconds()),
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			if dep.critical {
				response.Status = StatusUnhealthy
			} else if response.Status == StatusHealthy {
				response.Status = StatusDegraded
			}
		}
		response.Checks[dep.name] = result
	}

	return response
}

// RedisCheck는 PING으로 Redis 연결을 확인합니다
func RedisCheck(client redis.UniversalClient) CheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// BreakerCheck는 sink의 circuit breaker가 열려 있으면 실패합니다
func BreakerCheck(state func() circuitbreaker.State) CheckFunc {
	return func(context.Context) error {
		if s := state(); s == circuitbreaker.StateOpen {
			return fmt.Errorf("circuit breaker is %s", s)
		}
		return nil
	}
}
