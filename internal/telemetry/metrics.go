package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics.
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_delivery_api_requests_total",
		Help: "Total HTTP requests by method, endpoint and status.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "huginn_delivery_api_request_duration_seconds",
		Help:    "HTTP request latency by method, endpoint and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huginn_delivery_api_active_connections",
		Help: "In-flight HTTP requests.",
	})
)

// Resolution metrics.
var (
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_delivery_resolutions_total",
		Help: "Delivery-window resolutions by outcome.",
	}, []string{"outcome"})

	ResolutionSlots = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "huginn_delivery_resolution_slots",
		Help:    "Number of slots returned per successful resolution.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	CalendarCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_delivery_calendar_cache_lookups_total",
		Help: "Calendar cache lookups by result (hit, miss, bypass).",
	}, []string{"result"})
)

// Database metrics, recorded by gorm callbacks.
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "huginn_delivery_db_query_duration_seconds",
		Help:    "Database operation latency by operation and table.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_delivery_db_errors_total",
		Help: "Database errors by operation and kind.",
	}, []string{"operation", "kind"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huginn_delivery_db_connections_active",
		Help: "Open database connections.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
