package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	// CircuitBreakerFailures tracks circuit breaker failures
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	// OrdersPricedTotal tracks priced orders by status
	OrdersPricedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_priced_total",
			Help: "Total number of orders run through the pricing engine",
		},
		[]string{"status"},
	)

	// OrderFinalTotal tracks final order totals
	OrderFinalTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_final_total_dollars",
			Help:    "Final order totals in dollars",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)

	// PromotionOutcomesTotal tracks what happened to supplied promotion codes
	PromotionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_outcomes_total",
			Help: "Promotion codes by outcome",
		},
		[]string{"status"},
	)

	// StockRecordsTotal tracks stock update records by classification
	StockRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_records_total",
			Help: "Stock update records by classification",
		},
		[]string{"classification"},
	)

	// StockAlertsTotal tracks alerts raised while validating stock batches
	StockAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_total",
			Help: "Alerts raised by stock batch validation",
		},
		[]string{"alert"},
	)

	// InventoryLevel tracks the current stock level per item
	InventoryLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_level",
			Help: "Current inventory level",
		},
		[]string{"item_id"},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
