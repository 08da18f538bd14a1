// Package metrics exposes Prometheus instrumentation: standard HTTP
// metrics plus counters for the order and inventory pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks HTTP request latency by method, path and
	// status code.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dokan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dokan",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Orders successfully persisted.",
	})

	OrdersFlaggedForReview = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dokan",
		Subsystem: "orders",
		Name:      "flagged_for_review_total",
		Help:      "Orders routed to pending_review after deduction failures.",
	})

	OrdersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dokan",
		Subsystem: "orders",
		Name:      "rejected_total",
		Help:      "Draft orders rejected before persistence.",
	})

	StockDeductionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dokan",
		Subsystem: "inventory",
		Name:      "deduction_failures_total",
		Help:      "Per-item stock deduction failures.",
	})
)

// Handler serves the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration and status for every request. The path
// label is the matched route pattern, not the raw URL, so per-order URLs
// collapse into one series instead of one per id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		RequestDuration.
			WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
