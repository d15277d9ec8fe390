package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
)

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Database: "ok"}
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		log.Printf("Health check: database ping failed: %v", err)
		status.Status, status.Database = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		status.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			status.Cache = "unreachable"
		}
	}
	return c.JSON(code, utils.Envelope{Success: code == http.StatusOK, Data: status})
}
