package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiranascan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiranascan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	receiptsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiranascan_receipts_processed_total",
			Help: "Total number of receipt images processed",
		},
		[]string{"status"}, // ok, error
	)

	receiptProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kiranascan_receipt_processing_duration_seconds",
			Help:    "End-to-end receipt processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25},
		},
	)

	extractedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiranascan_extracted_items_total",
			Help: "Total extracted line items by match outcome",
		},
		[]string{"outcome"}, // matched, unmatched
	)
)

// MetricsMiddleware records per-request counters and latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(
			c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func observeReceipt(err error, matched, unmatched int, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	receiptsProcessedTotal.WithLabelValues(status).Inc()
	receiptProcessingDuration.Observe(elapsed.Seconds())
	extractedItemsTotal.WithLabelValues("matched").Add(float64(matched))
	extractedItemsTotal.WithLabelValues("unmatched").Add(float64(unmatched))
}
