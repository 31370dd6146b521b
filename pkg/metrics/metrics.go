// Package metrics holds the Prometheus collectors for the order service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderflow"

// Outcome labels for OrderTransition.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	orderTransitions    *prometheus.CounterVec
	stockRestorations   *prometheus.CounterVec
	notificationFailure *prometheus.CounterVec
	quoteCache          *prometheus.CounterVec
	staleRefunds        prometheus.Gauge
	rateLimited         prometheus.Counter
	gatherer            prometheus.Gatherer
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "transitions_total",
			Help: "Order state changes attempted, by action and result.",
		}, []string{"action", "result"}),
		stockRestorations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "stock_restorations_total",
			Help: "Stock restorations applied, by reason.",
		}, []string{"reason"}),
		notificationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "notifications", Name: "failures_total",
			Help: "Notification deliveries that failed, by sink.",
		}, []string{"sink"}),
		quoteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "shipping", Name: "config_cache_total",
			Help: "Shipping config cache lookups by result.",
		}, []string{"result"}),
		staleRefunds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "refunds", Name: "stale",
			Help: "Open refunds older than the reminder age at the last check.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.orderTransitions,
		m.stockRestorations,
		m.notificationFailure,
		m.quoteCache,
		m.staleRefunds,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) OrderTransition(action, result string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) StockRestored(reason string) {
	if m == nil {
		return
	}
	m.stockRestorations.WithLabelValues(reason).Inc()
}

func (m *Metrics) NotificationFailed(sink string) {
	if m == nil {
		return
	}
	m.notificationFailure.WithLabelValues(sink).Inc()
}

func (m *Metrics) ShippingConfigCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.quoteCache.WithLabelValues(result).Inc()
}

func (m *Metrics) SetStaleRefunds(n int64) {
	if m == nil {
		return
	}
	m.staleRefunds.Set(float64(n))
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency keyed by the matched mux
// pattern. It must wrap the ServeMux directly so r.Pattern is visible.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
