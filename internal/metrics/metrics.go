// Package metrics registers the Prometheus instruments used by the services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters and histograms the modules report into.
type Metrics struct {
	LevelsCreated           prometheus.Counter
	ThumbnailUploadFailures prometheus.Counter
	RecordsSubmitted        *prometheus.CounterVec
	OutboxEvents            *prometheus.CounterVec
	PopularityRuns          *prometheus.CounterVec
	OperationDuration       *prometheus.HistogramVec
}

// New registers all instruments against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LevelsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "raceline_levels_created_total",
			Help: "Number of level rows inserted.",
		}),
		ThumbnailUploadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "raceline_thumbnail_upload_failures_total",
			Help: "Number of thumbnail uploads that failed and were skipped.",
		}),
		RecordsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceline_records_submitted_total",
			Help: "Record submissions by outcome.",
		}, []string{"outcome"}),
		OutboxEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceline_outbox_events_total",
			Help: "Outbox relay events by status.",
		}, []string{"status"}),
		PopularityRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceline_popularity_runs_total",
			Help: "Popularity aggregation runs by variant and status.",
		}, []string{"variant", "status"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raceline_operation_duration_seconds",
			Help:    "Service operation duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// ObserveDuration records an operation duration in seconds.
func (m *Metrics) ObserveDuration(operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}
