package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	productsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_products_created_total",
			Help: "Total number of products created",
		},
	)

	ordersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	orderValue = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_order_total_price",
			Help:    "Total price of created orders",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	orderLineItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_order_line_items",
			Help:    "Number of line items per created order",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_cache_lookups_total",
			Help: "List cache lookups by result",
		},
		[]string{"key", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(productsCreatedTotal)
	prometheus.MustRegister(ordersCreatedTotal)
	prometheus.MustRegister(orderValue)
	prometheus.MustRegister(orderLineItems)
	prometheus.MustRegister(cacheLookupsTotal)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordProductCreated() {
	productsCreatedTotal.Inc()
}

func RecordOrderCreated(totalPrice float64, lineItems int) {
	ordersCreatedTotal.Inc()
	orderValue.Observe(totalPrice)
	orderLineItems.Observe(float64(lineItems))
}

func RecordCacheLookup(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(key, result).Inc()
}
