package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "locallisting",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallisting",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "locallisting",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	listingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "locallisting",
			Subsystem: "listings",
			Name:      "created_total",
			Help:      "Total number of listings created.",
		},
	)

	favoriteToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallisting",
			Subsystem: "listings",
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by resulting action.",
		},
		[]string{"action"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "locallisting",
			Subsystem: "messaging",
			Name:      "messages_sent_total",
			Help:      "Total number of messages sent.",
		},
	)

	reviewsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallisting",
			Subsystem: "reviews",
			Name:      "submitted_total",
			Help:      "Review submissions by outcome (created or updated).",
		},
		[]string{"outcome"},
	)

	imageUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallisting",
			Subsystem: "storage",
			Name:      "image_operations_total",
			Help:      "Image host operations by kind and result.",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		listingsCreated,
		favoriteToggles,
		messagesSent,
		reviewsSubmitted,
		imageUploads,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func IncrementInFlight() { httpInFlight.Inc() }
func DecrementInFlight() { httpInFlight.Dec() }

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func ListingCreated() { listingsCreated.Inc() }

func FavoriteToggled(action string) { favoriteToggles.WithLabelValues(action).Inc() }

func MessageSent() { messagesSent.Inc() }

func ReviewSubmitted(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	reviewsSubmitted.WithLabelValues(outcome).Inc()
}

func ImageOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	imageUploads.WithLabelValues(operation, result).Inc()
}
