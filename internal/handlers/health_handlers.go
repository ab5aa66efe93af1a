package handlers

import (
	"context"
	"net/http"
	"time"

	"marketmedia/internal/caching"
	"marketmedia/internal/services"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db          Pinger
	cacheSvc    caching.CacheService
	objectStore services.ObjectStore
	version     string
	startedAt   time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db Pinger, cacheSvc caching.CacheService, objectStore services.ObjectStore, version string) *HealthHandlers {
	return &HealthHandlers{
		db:          db,
		cacheSvc:    cacheSvc,
		objectStore: objectStore,
		version:     version,
		startedAt:   time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// HealthCheck godoc
// @Summary      Dependency health
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthStatus
// @Success      206  {object}  HealthStatus
// @Router       /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	for name, check := range h.checks() {
		if err := check(ctx); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
		} else {
			health.Services[name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck godoc
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	// The cache is optional; only the database and object store gate readiness.
	if h.db.Ping(ctx) != nil || h.objectStore.Ping(ctx) != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandlers) checks() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"database": h.db.Ping,
		"redis":    h.cacheSvc.Ping,
		"storage":  h.objectStore.Ping,
	}
}
