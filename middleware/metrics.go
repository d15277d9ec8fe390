package middleware

import (
	"strconv"
	"time"

	"github.com/brushbolt/store-backend/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route pattern. Returned
// errors are counted with the status the error handler will render.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status = statusOf(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method

		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

func statusOf(err error) int {
	status, _, _ := classify(err, false)
	return status
}
