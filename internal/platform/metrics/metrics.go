package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfit_submissions_total",
			Help: "Job submissions by algorithm and outcome (rejected, queued, completed, failed).",
		},
		[]string{"algorithm", "outcome"},
	)

	ConfigurationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "starfit_configuration_errors_total",
			Help: "Submissions rendered as a configuration error page.",
		},
	)

	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starfit_fit_duration_seconds",
			Help:    "Wall time of fitting service calls.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 900, 1800},
		},
		[]string{"algorithm"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfit_emails_total",
			Help: "Result and failure emails by delivery outcome.",
		},
		[]string{"kind", "outcome"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "starfit_queue_depth",
			Help: "Emailed jobs waiting in the Redis queue, sampled by the worker.",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
