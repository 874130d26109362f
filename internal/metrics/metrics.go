// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcomes.
const (
	CheckoutCreated  = "created"
	CheckoutRejected = "rejected"
	CheckoutFailed   = "failed"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	// CheckoutsTotal counts checkout attempts by outcome.
	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "storefront_checkouts_total", Help: "Checkout attempts by outcome"},
		[]string{"outcome"},
	)

	OutboxSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_outbox_sent_total",
		Help: "Total outbox events successfully published",
	})
	OutboxPublishErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_outbox_publish_errors_total",
		Help: "Total outbox publish errors",
	})
	OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_outbox_pending",
		Help: "Pending outbox events seen by the last relay poll",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		CheckoutsTotal,
		OutboxSentTotal,
		OutboxPublishErrorsTotal,
		OutboxPending,
	)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labeled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		route := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Unmatched paths share one label to keep cardinality bounded.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
