// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GradeMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_grade_mutations_total",
			Help: "Total number of grade creations, updates and deletions",
		},
		[]string{"action"},
	)

	NoteMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_note_mutations_total",
			Help: "Total number of note creations, updates, deletions and pin toggles",
		},
		[]string{"action"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	GradeValueHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_grade_value",
			Help:    "Distribution of recorded grade values",
			Buckets: prometheus.LinearBuckets(0, 0.5, 11),
		},
	)

	CurrentGPA = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_current_gpa",
			Help: "Credit weighted GPA as of the last grades report",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
