package middleware

import (
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger는 관리 API 요청의 완료를 로깅합니다. 5xx는 error, 4xx는 warn 레벨입니다.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		ctx := c.Request.Context()
		duration := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			logger.HTTPMethod(c.Request.Method),
			logger.HTTPPath(path),
			logger.HTTPStatus(statusCode),
			logger.RemoteAddr(c.ClientIP()),
			logger.DurationMs(duration),
			zap.Int("response_size", c.Writer.Size()),
		}

		switch {
		case len(c.Errors) > 0:
			logger.Error(ctx, "request completed with errors",
				append(fields, zap.Strings("errors", c.Errors.Errors()))...)
		case statusCode >= 500:
			logger.Error(ctx, "request completed", fields...)
		case statusCode >= 400:
			logger.Warn(ctx, "request completed", fields...)
		default:
			logger.Info(ctx, "request completed", fields...)
		}
	}
}
