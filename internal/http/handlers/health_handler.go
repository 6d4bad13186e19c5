package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck проверяет одну зависимость сервиса.
type HealthCheck func(ctx context.Context) error

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler создаёт новый health handler. Ключ карты попадает в ответ.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{checks: checks}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	status := "healthy"
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			status = "unhealthy"
			continue
		}
		checks[name] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}
