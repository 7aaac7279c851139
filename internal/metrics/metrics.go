package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request counter
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP request duration histogram
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// Active HTTP connections gauge
	HTTPActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	// PatientOperationsTotal tracks record store operations
	PatientOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patient_operations_total",
			Help: "Total number of patient store operations",
		},
		[]string{"operation", "status"}, // "create", "read_all", ... x "success", "error", "not_found"
	)

	// AggregationsTotal tracks average-age computations
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patient_aggregations_total",
			Help: "Total number of average age aggregations",
		},
		[]string{"status"}, // "success", "no_valid_data"
	)

	// AggregationDuration tracks aggregation duration
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patient_aggregation_duration_seconds",
			Help:    "Duration of average age aggregations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// InvalidAgesTotal tracks records excluded from aggregation
	InvalidAgesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "patient_invalid_ages_total",
			Help: "Total number of patient records excluded from aggregation due to unparsable age",
		},
	)

	// ScrapeFetchTotal tracks disease scraper HTTP fetches
	ScrapeFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disease_scrape_fetch_total",
			Help: "Total number of disease scrape fetch operations",
		},
		[]string{"operation", "status"}, // "topics_fetch", "detail_fetch" x "success", "error"
	)

	// ScrapeFetchDuration tracks disease scraper fetch duration
	ScrapeFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disease_scrape_fetch_duration_seconds",
			Help:    "Duration of disease scrape fetch operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// NotificationsTotal tracks create notification outcomes
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patient_notifications_total",
			Help: "Total number of patient create notifications",
		},
		[]string{"status"}, // "sent", "dropped", "error"
	)
)

// RecordHTTPRequest records metrics for an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)

	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordPatientOperation records record store metrics
func RecordPatientOperation(operation, status string) {
	PatientOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordAggregation records an average age computation
func RecordAggregation(status string, duration time.Duration) {
	AggregationsTotal.WithLabelValues(status).Inc()
	AggregationDuration.Observe(duration.Seconds())
}

// RecordInvalidAge records a record excluded from aggregation
func RecordInvalidAge() {
	InvalidAgesTotal.Inc()
}

// RecordScrapeFetch records a scraper HTTP fetch
func RecordScrapeFetch(operation, status string, duration time.Duration) {
	ScrapeFetchTotal.WithLabelValues(operation, status).Inc()
	ScrapeFetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordNotification records a create notification outcome
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

// IncActiveConnections increments active connections
func IncActiveConnections() {
	HTTPActiveConnections.Inc()
}

// DecActiveConnections decrements active connections
func DecActiveConnections() {
	HTTPActiveConnections.Dec()
}
