package middleware

import (
	"strconv"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware는 Prometheus HTTP 메트릭을 수집합니다.
// 라벨 폭증을 막기 위해 실제 경로 대신 라우트 템플릿을 사용합니다.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
