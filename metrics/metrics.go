// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sectionpulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sectionpulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ingestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sectionpulse_ingest_total",
			Help: "Session records received, by persistence result",
		},
		[]string{"result"},
	)

	queryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sectionpulse_query_total",
			Help: "Analytics queries served, by format",
		},
		[]string{"format"},
	)

	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sectionpulse_store_load_duration_seconds",
			Help:    "Time spent listing and loading stored entries",
			Buckets: prometheus.DefBuckets,
		},
	)

	loadedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sectionpulse_loaded_entries",
			Help: "Entries inside the window of the most recent query",
		},
	)

	skippedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sectionpulse_skipped_entries_total",
			Help: "Stored entries skipped because they could not be read or decoded",
		},
	)

	initOnce sync.Once
)

// Ingest results.
const (
	IngestSaved   = "saved"
	IngestDropped = "dropped"
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			ingestTotal,
			queryTotal,
			loadDuration,
			loadedEntries,
			skippedEntries,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordIngest(result string) {
	ingestTotal.WithLabelValues(result).Inc()
}

func RecordQuery(format string) {
	queryTotal.WithLabelValues(format).Inc()
}

func RecordLoad(duration time.Duration, entries int) {
	loadDuration.Observe(duration.Seconds())
	loadedEntries.Set(float64(entries))
}

func RecordSkippedEntry() {
	skippedEntries.Inc()
}
