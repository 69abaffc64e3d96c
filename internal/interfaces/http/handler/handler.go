// Package handler는 gin HTTP 핸들러입니다. 에러는 c.Error로 남기고 ErrorHandlerMiddleware가 응답을 만듭니다.
package handler

import (
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse는 에러 응답 형식입니다 (문서화용)
type ErrorResponse struct {
	Error struct {
		Code     string                 `json:"code"`
		Message  string                 `json:"message"`
		Details  string                 `json:"details,omitempty"`
		Metadata map[string]interface{} `json:"metadata,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(errors.Validation("invalid request body").WithDetails(err.Error()))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		_ = c.Error(errors.Validation("invalid query parameters").WithDetails(err.Error()))
		return false
	}
	return true
}
