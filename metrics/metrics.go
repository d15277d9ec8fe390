// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_placed_total",
		Help: "Orders successfully placed.",
	})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_cancelled_total",
		Help: "Orders cancelled by customers or admins.",
	})

	OrderValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_order_value",
		Help:    "Total amount of placed orders.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	StockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_stock_reservation_conflicts_total",
		Help: "Checkouts that passed the stock check but lost the reservation to a concurrent order.",
	})

	RatingRecalculations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_rating_recalculations_total",
		Help: "Product rating aggregates recomputed from reviews.",
	})
)
