package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc는 의존성 연결을 확인하는 함수입니다
type PingFunc func(ctx context.Context) error

// HealthDependencies는 헬스체크 대상입니다. nil인 항목은 검사하지 않습니다.
type HealthDependencies struct {
	MongoDB PingFunc // 필수
	Redis   PingFunc
	Vault   PingFunc
	Kafka   bool
}

// HealthHandler는 헬스체크 핸들러입니다
type HealthHandler struct {
	version string
	deps    HealthDependencies
	timeout time.Duration
}

// NewHealthHandler는 새로운 HealthHandler를 생성합니다
func NewHealthHandler(version string, deps HealthDependencies) *HealthHandler {
	return &HealthHandler{version: version, deps: deps, timeout: 2 * time.Second}
}

// HealthResponse는 헬스체크 응답입니다
type HealthResponse struct {
	Status    string                 `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck는 개별 의존성 체크 결과입니다
type HealthCheck struct {
	Status   string  `json:"status"` // "healthy", "unhealthy"
	Message  string  `json:"message,omitempty"`
	Duration float64 `json:"duration_ms"`
}

// Health godoc
// @Summary      Health check
// @Description  MongoDB is critical; Redis and Vault only degrade the service
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    make(map[string]HealthCheck),
	}

	mongo := h.check(ctx, h.deps.MongoDB)
	response.Checks["mongodb"] = mongo
	if mongo.Status != "healthy" {
		response.Status = "unhealthy"
	}

	optional := map[string]PingFunc{"redis": h.deps.Redis, "vault": h.deps.Vault}
	for name, ping := range optional {
		if ping == nil {
			continue
		}
		check := h.check(ctx, ping)
		response.Checks[name] = check
		if check.Status != "healthy" && response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	if h.deps.Kafka {
		response.Checks["kafka"] = HealthCheck{Status: "healthy", Message: "producer initialized"}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// Ready godoc
// @Summary      Readiness check
// @Description  Check if the service is ready to accept traffic (Kubernetes readiness probe)
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if check := h.check(c.Request.Context(), h.deps.MongoDB); check.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "mongodb connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

func (h *HealthHandler) check(ctx context.Context, ping PingFunc) HealthCheck {
	if ping == nil {
		return HealthCheck{Status: "unhealthy", Message: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	duration := float64(time.Since(start).Milliseconds())
	if err != nil {
		return HealthCheck{Status: "unhealthy", Message: err.Error(), Duration: duration}
	}
	return HealthCheck{Status: "healthy", Duration: duration}
}
