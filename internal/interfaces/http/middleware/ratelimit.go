package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fixedWindowScript는 윈도우 안의 요청 수를 원자적으로 세고 허용 여부(1/0)를 반환합니다
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local current = tonumber(redis.call('GET', key) or "0")

	if current < limit then
		redis.call('INCR', key)
		if current == 0 then
			redis.call('EXPIRE', key, window)
		end
		return 1
	end
	return 0
`)

// RateLimiter는 Redis 고정 윈도우 속도 제한기입니다.
// 여러 노드가 같은 Redis를 보면 관리 API 호출 한도가 클러스터 전체에 걸립니다.
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

// NewRateLimiter는 새 RateLimiter를 생성합니다
func NewRateLimiter(client redis.UniversalClient, prefix string, limit int64, window time.Duration) *RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow는 key에 대한 요청을 하나 더 허용할지 확인합니다
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	result, err := fixedWindowScript.Run(ctx, rl.client,
		[]string{rl.prefix + ":" + key}, rl.limit, int64(rl.window.Seconds())).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

// RateLimit는 클라이언트 IP 기준으로 요청을 제한합니다. Redis 에러면 요청을 통과시킵니다.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		allowed, err := rl.Allow(ctx, clientIP)
		if err != nil {
			logger.Error(ctx, "rate limit check failed",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			logger.Warn(ctx, "rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.Int64("limit", rl.limit),
				zap.Duration("window", rl.window),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(rl.window.Seconds()),
				"limit":       rl.limit,
			})
			return
		}

		c.Next()
	}
}
