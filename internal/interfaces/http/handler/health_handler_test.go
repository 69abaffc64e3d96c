package handler_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YouSangSon/reports-service/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return stderrors.New("connection refused") }

func healthEngine(deps handler.HealthDependencies) *gin.Engine {
	h := handler.NewHealthHandler("test", deps)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	return r
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name   string
		deps   handler.HealthDependencies
		code   int
		status string
	}{
		{name: "all healthy", deps: handler.HealthDependencies{MongoDB: ok, Redis: ok, Kafka: true}, code: http.StatusOK, status: "healthy"},
		{name: "redis down degrades", deps: handler.HealthDependencies{MongoDB: ok, Redis: failing}, code: http.StatusOK, status: "degraded"},
		{name: "vault down degrades", deps: handler.HealthDependencies{MongoDB: ok, Vault: failing}, code: http.StatusOK, status: "degraded"},
		{name: "mongodb down", deps: handler.HealthDependencies{MongoDB: failing, Redis: ok}, code: http.StatusServiceUnavailable, status: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			healthEngine(tt.deps).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, w.Code)
			var body handler.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "test", body.Version)
			assert.Contains(t, body.Checks, "mongodb")
		})
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	w := httptest.NewRecorder()
	healthEngine(handler.HealthDependencies{MongoDB: ok}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	healthEngine(handler.HealthDependencies{MongoDB: failing}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
