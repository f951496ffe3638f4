package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery는 패닉을 복구하고 500 에러를 반환합니다
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					logger.HTTPMethod(c.Request.Method),
					logger.HTTPPath(c.Request.URL.Path),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(c,
					errors.New(errors.ErrCodeInternal, "internal server error")))
			}
		}()

		c.Next()
	}
}

// ErrorHandler는 핸들러가 c.Error로 남긴 마지막 에러를 표준 JSON 응답으로 씁니다
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *errors.AppError
		if !errors.As(err, &appErr) {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "internal server error")
		}

		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request error",
				logger.HTTPPath(c.Request.URL.Path),
				logger.ErrorCode(string(appErr.Code)),
				zap.Error(appErr),
			)
		}

		c.JSON(appErr.HTTPStatus, errorBody(c, appErr))
	}
}

func errorBody(c *gin.Context, appErr *errors.AppError) gin.H {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Details != "" {
		body["details"] = appErr.Details
	}
	return gin.H{
		"error":      body,
		"request_id": GetRequestID(c),
	}
}
