package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the payment reconciliation flow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	checkoutsInitiated prometheus.Counter
	reconciliations    *prometheus.CounterVec
	storeWrites        *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	checkoutsInitiated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_checkouts_initiated_total",
		Help: "Total hosted checkout sessions created",
	})

	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconciliations_total",
		Help: "Redirect completions by outcome",
	}, []string{"outcome"})

	storeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_store_writes_total",
		Help: "Document store writes by kind",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, checkoutsInitiated, reconciliations, storeWrites, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		checkoutsInitiated: checkoutsInitiated,
		reconciliations:    reconciliations,
		storeWrites:        storeWrites,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCheckoutInitiated counts a newly created checkout session.
func (m *MetricsService) RecordCheckoutInitiated() {
	if m == nil {
		return
	}
	m.checkoutsInitiated.Inc()
}

// RecordReconciliation counts a redirect completion outcome, one of
// applied, unpaid, untracked, update_failed, cancelled.
func (m *MetricsService) RecordReconciliation(outcome string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(outcome).Inc()
}

// RecordStoreWrite counts a document store write.
func (m *MetricsService) RecordStoreWrite(kind string) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(kind).Inc()
}
