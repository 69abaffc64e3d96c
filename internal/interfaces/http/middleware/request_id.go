package middleware

import (
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader는 request ID 헤더 이름입니다
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey는 gin context에서 request ID를 저장하는 키입니다
	RequestIDKey = "request_id"
)

// RequestIDMiddleware는 각 요청에 고유 ID를 부여하고 로거 context에 추가합니다
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := logger.WithFields(c.Request.Context(),
			logger.RequestID(requestID),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID는 gin context에서 request ID를 반환합니다
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
