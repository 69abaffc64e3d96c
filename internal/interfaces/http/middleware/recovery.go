package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware는 패닉을 복구하고 500 에러를 반환합니다
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				logger.Error(ctx, "panic recovered",
					logger.HTTPMethod(c.Request.Method),
					logger.HTTPPath(c.Request.URL.Path),
					logger.RemoteAddr(c.ClientIP()),
					zap.Any("panic", err),
					zap.String("stack", string(debug.Stack())),
				)

				appErr := errors.New(errors.ErrCodeInternal, "internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(c, appErr))
			}
		}()

		c.Next()
	}
}

// ErrorHandlerMiddleware는 핸들러가 남긴 에러를 표준화된 형식으로 반환합니다
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		var appErr *errors.AppError
		if !errors.As(err, &appErr) {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "internal server error")
		}

		fields := []zap.Field{
			logger.HTTPMethod(c.Request.Method),
			logger.HTTPPath(c.Request.URL.Path),
			logger.ErrorCode(string(appErr.Code)),
			logger.ErrorMessage(appErr.Message),
			zap.Error(err),
		}
		if len(appErr.Metadata) > 0 {
			fields = append(fields, logger.Metadata(appErr.Metadata))
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error(ctx, "request error", fields...)
		} else {
			logger.Debug(ctx, "request rejected", fields...)
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
	if len(appErr.Metadata) > 0 {
		body["metadata"] = appErr.Metadata
	}
	return gin.H{
		"error":      body,
		"request_id": GetRequestID(c),
	}
}

// CORSMiddleware는 CORS 헤더를 설정합니다
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
