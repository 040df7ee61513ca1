// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRequests counts every request received.
	TotalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "augmentation_requests_total",
		Help: "The total number of requests received.",
	})

	// InvalidRequests counts requests rejected before detection.
	InvalidRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "augmentation_invalid_requests_total",
		Help: "The total number of invalid requests received.",
	})

	// RequestDuration accumulates time spent processing requests, in
	// milliseconds.
	RequestDuration = promauto.NewCounter(prometheus.CounterOpts{
		Name: "augmentation_request_duration_milliseconds",
		Help: "The total amount of time spent processing requests.",
	})

	// ErrorsLogged counts errors surfaced to clients.
	ErrorsLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "augmentation_errors_logged_total",
		Help: "The total number of errors logged.",
	})

	// ObjectsProcessed counts detection objects by outcome.
	ObjectsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "augmentation_objects_processed_total",
		Help: "The total number of objects processed.",
	}, []string{"status"})

	// DetectedLanguage counts detection results by resolved language
	// name.
	DetectedLanguage = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "augmentation_detected_language",
		Help: "Counts of languages detected.",
	}, []string{"language"})
)

func init() {
	// Pre-register the status labels so both series exist from the
	// first scrape.
	ObjectsProcessed.WithLabelValues("successful")
	ObjectsProcessed.WithLabelValues("unsuccessful")
}

// ObserveRequest adds a completed request's wall time to the duration
// counter.
func ObserveRequest(start time.Time) {
	TotalRequests.Inc()
	RequestDuration.Add(float64(time.Since(start).Milliseconds()))
}
