// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the ledger write paths.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ledgerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger write operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	ledgerOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Latency of ledger write operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ledgerConsistencyDrifts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_consistency_findings",
		Help: "Account drifts plus entry imbalances found by the last reconciliation pass.",
	})
)

var registerOnce sync.Once

// Init registers the metrics in the default registry. Repeated calls are no-ops.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			ledgerOperationsTotal,
			ledgerOperationDuration,
			ledgerConsistencyDrifts,
		)
	})
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records request count, latency and in-flight requests.
// Routes are labelled by their pattern, not the raw path, to bound cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpInFlight.Dec()
	}
}

// Outcome buckets an error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrRetryable):
		return "retryable"
	case errors.Is(err, apperrors.ErrConsistency):
		return "inconsistent"
	default:
		return "error"
	}
}

// ObserveOperation records the outcome and latency of one ledger operation.
func ObserveOperation(operation string, start time.Time, err error) {
	ledgerOperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	ledgerOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetConsistencyFindings records how many findings the last reconciliation produced.
func SetConsistencyFindings(n int) {
	ledgerConsistencyDrifts.Set(float64(n))
}
