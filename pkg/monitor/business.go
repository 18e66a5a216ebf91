package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics defines the review/submission metrics
type BusinessMetrics struct {
	ReviewStartedTotal    prometheus.Counter
	ReviewFailedTotal     prometheus.Counter
	MetadataFetchFailures *prometheus.CounterVec
	SubmissionTotal       *prometheus.CounterVec
	GuaranteeEditsTotal   prometheus.Counter
	PollDuration          prometheus.Histogram
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics initializes the business metrics
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		ReviewStartedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "review_started_total",
			Help: "The total number of transaction reviews started",
		}),
		ReviewFailedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "review_failed_total",
			Help: "The total number of reviews that failed to load a preview",
		}),
		MetadataFetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "review_metadata_fetch_failures_total",
			Help: "Metadata lookups degraded to placeholder entries",
		}, []string{"kind"}),
		SubmissionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "review_submission_total",
			Help: "Submissions by terminal status",
		}, []string{"status"}),
		GuaranteeEditsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "review_guarantee_edits_total",
			Help: "Accepted guarantee percentage edits",
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_poll_duration_seconds",
			Help:    "Time from submission accepted to terminal ledger status",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
