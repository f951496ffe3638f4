package handler

import (
	"net/http"

	"github.com/YouSangSon/shardwatch/internal/featuregate"
	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	GateSourceStatic = "static"
	GateSourceRedis  = "redis"
)

// InterceptionHandler는 bulk 타이밍 인터셉션 게이트를 조회하고 전환합니다
type InterceptionHandler struct {
	gate    *featuregate.Switch
	watcher *featuregate.RedisWatcher
}

// NewInterceptionHandler는 새로운 InterceptionHandler를 생성합니다.
// watcher가 있으면 전환 값을 Redis에도 기록해 다른 노드가 따라오게 합니다.
func NewInterceptionHandler(gate *featuregate.Switch, watcher *featuregate.RedisWatcher) *InterceptionHandler {
	if watcher != nil {
		gate = watcher.Gate()
	}
	if gate == nil {
		gate = featuregate.NewSwitch(false)
	}
	return &InterceptionHandler{gate: gate, watcher: watcher}
}

// InterceptionState는 게이트 상태 응답입니다
type InterceptionState struct {
	Enabled  bool   `json:"enabled"`
	Previous *bool  `json:"previous,omitempty"`
	Source   string `json:"source"`
	RedisKey string `json:"redis_key,omitempty"`
}

// SetInterceptionRequest는 게이트 전환 요청입니다
type SetInterceptionRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// Get은 현재 게이트 상태를 반환합니다
func (h *InterceptionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.state(nil))
}

// Set은 게이트를 켜거나 끕니다
func (h *InterceptionHandler) Set(c *gin.Context) {
	var req SetInterceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.Wrap(err, errors.ErrCodeInvalidRequest, "body must be {\"enabled\": bool}"))
		return
	}

	ctx := c.Request.Context()
	previous := h.gate.Enabled()
	enabled := *req.Enabled

	if h.watcher != nil {
		if err := h.watcher.Publish(ctx, enabled); err != nil {
			_ = c.Error(errors.Wrap(err, errors.ErrCodeGateUnavailable, "failed to publish interception gate"))
			return
		}
	} else {
		h.gate.Set(enabled)
	}

	logger.Info(ctx, "interception gate set via admin api",
		logger.Component("admin"),
		logger.Enabled(enabled),
	)

	c.JSON(http.StatusOK, h.state(&previous))
}

func (h *InterceptionHandler) state(previous *bool) InterceptionState {
	st := InterceptionState{
		Enabled:  h.gate.Enabled(),
		Previous: previous,
		Source:   GateSourceStatic,
	}
	if h.watcher != nil {
		st.Source = GateSourceRedis
		st.RedisKey = h.watcher.Key()
	}
	return st
}
