package middleware

import (
	"context"
	"strconv"

	"github.com/YouSangSon/reports-service/internal/infrastructure/cache"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter는 키별 요청 허용 여부를 판정합니다
type Limiter interface {
	Allow(ctx context.Context, key string) (cache.RateResult, error)
}

// RateLimit는 인증된 사용자(없으면 클라이언트 IP) 기준 rate limiting 미들웨어입니다.
// Redis 장애 시에는 요청을 허용합니다.
func RateLimit(limiter Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		scope, key := "ip", c.ClientIP()
		if username := CurrentUsername(c); username != "" {
			scope, key = "user", username
		}

		result, err := limiter.Allow(ctx, scope+":"+key)
		if err != nil {
			logger.Warn(ctx, "rate limit check failed, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

		if !result.Allowed {
			m.RecordRateLimited(scope)
			logger.Warn(ctx, "rate limit exceeded",
				zap.String("scope", scope),
				zap.String("key", key),
				zap.Int64("limit", result.Limit),
			)

			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			_ = c.Error(errors.New(errors.ErrCodeRateLimitExceeded, "rate limit exceeded").WithMetadata("retry_after", retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}
