package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	catalog *catalog.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cat *catalog.Store) *HealthHandler {
	return &HealthHandler{catalog: cat}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 if the product catalog is readable, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 if the product catalog is readable, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if _, err := h.catalog.Load(); err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			map[string]string{"status": "unavailable"},
		)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
