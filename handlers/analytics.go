package handlers

import (
	"time"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// clamp returns v limited to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (h *Handler) Dashboard(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var stats models.DashboardStats
	if h.cache.GetJSON(ctx, dashboardCacheKey, &stats) {
		return utils.OK(c, stats)
	}

	fresh, err := h.store.Dashboard(ctx, h.cfg.LowStockThreshold)
	if err != nil {
		return utils.Internal("Failed to build dashboard", err)
	}
	h.cache.SetJSON(ctx, dashboardCacheKey, fresh, dashboardCacheTTL)
	return utils.OK(c, fresh)
}

// SalesOverTime accepts period=day|month and days (1..365, default 30).
func (h *Handler) SalesOverTime(c echo.Context) error {
	days, err := utils.QueryInt(c, "days", 30)
	if err != nil {
		return err
	}
	period := c.QueryParam("period")
	if period != "" && period != "day" && period != "month" {
		return utils.BadRequest("period must be day or month")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	buckets, err := h.store.SalesOverTime(ctx, clamp(days, 1, 365), period == "month")
	if err != nil {
		return utils.Internal("Failed to aggregate sales", err)
	}
	return utils.OK(c, buckets)
}

func (h *Handler) OrdersByStatus(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	breakdown, err := h.store.OrdersByStatus(ctx)
	if err != nil {
		return utils.Internal("Failed to aggregate orders", err)
	}
	return utils.OK(c, breakdown)
}

func (h *Handler) TopProducts(c echo.Context) error {
	limit, err := utils.QueryInt(c, "limit", 10)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	top, err := h.store.TopProducts(ctx, clamp(limit, 1, 50))
	if err != nil {
		return utils.Internal("Failed to aggregate top products", err)
	}
	return utils.OK(c, top)
}

func (h *Handler) LowStock(c echo.Context) error {
	threshold, err := utils.QueryInt(c, "threshold", h.cfg.LowStockThreshold)
	if err != nil {
		return err
	}
	if threshold < 0 {
		return utils.BadRequest("threshold must not be negative")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.store.LowStockProducts(ctx, threshold, utils.MaxPageSize)
	if err != nil {
		return utils.Internal("Failed to fetch low stock products", err)
	}
	return utils.OK(c, products)
}

func (h *Handler) CategoryBreakdown(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	breakdown, err := h.store.CategoryBreakdown(ctx)
	if err != nil {
		return utils.Internal("Failed to aggregate categories", err)
	}
	return utils.OK(c, breakdown)
}
