package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/interfaces/http/dto"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// PlatformLister reports the configured platforms
type PlatformLister interface {
	Platforms() []integration.PlatformCode
}

// HealthHandler reports liveness and dependency status
type HealthHandler struct {
	version   string
	checks    map[string]HealthCheck
	platforms PlatformLister
	timeout   time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string, platforms PlatformLister, checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{
		version:   version,
		checks:    checks,
		platforms: platforms,
		timeout:   3 * time.Second,
	}
}

// Check handles GET /health
//
// @ID           healthCheck
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Checks:    make(map[string]string, len(h.checks)),
		Platforms: []string{},
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = "unhealthy: " + err.Error()
			resp.Status = "unhealthy"
			continue
		}
		resp.Checks[name] = "healthy"
	}
	if h.platforms != nil {
		for _, code := range h.platforms.Platforms() {
			resp.Platforms = append(resp.Platforms, code.String())
		}
		sort.Strings(resp.Platforms)
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
