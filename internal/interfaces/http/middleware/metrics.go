package middleware

import (
	"strconv"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics는 HTTP 요청 메트릭을 수집합니다. 매칭된 라우트 패턴을 endpoint 라벨로 씁니다.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		m = metrics.GetMetrics()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
