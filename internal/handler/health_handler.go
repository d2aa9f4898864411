package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"auratask/internal/cache"
	"auratask/internal/db"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler reports store reachability.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gormDB *gorm.DB, cache *cache.Client) *HealthHandler {
	return &HealthHandler{db: gormDB, cache: cache}
}

// HealthResponse represents the health probe result.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Check godoc
// @Summary Store reachability probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Database: "connected",
		Cache:    "connected",
	}
	statusCode := http.StatusOK

	if err := db.Ping(ctx, h.db); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		statusCode = http.StatusServiceUnavailable
	}

	// A dead cache degrades performance but not correctness, so it is
	// reported without flipping the overall status.
	if err := h.cache.Ping(ctx); err != nil {
		resp.Cache = "disconnected"
	}

	return c.JSON(statusCode, resp)
}
