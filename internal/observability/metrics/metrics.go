package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusportal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusportal_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusportal_bookings_created_total",
		Help: "Count of successfully created bookings",
	})

	bookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusportal_booking_conflicts_total",
		Help: "Count of booking attempts rejected by the overlap check",
	})

	bookingsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusportal_bookings_completed_total",
		Help: "Count of bookings flipped to completed by the sweep worker",
	})

	authFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusportal_auth_failures_total",
		Help: "Count of rejected authentication attempts by reason",
	}, []string{"reason"})

	announcementSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campusportal_announcement_subscribers",
		Help: "Number of connected announcement feed clients",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveBookingCreated increments the created-bookings counter.
func ObserveBookingCreated() {
	bookingsCreated.Inc()
}

// ObserveBookingConflict increments the conflict counter.
func ObserveBookingConflict() {
	bookingConflicts.Inc()
}

// ObserveBookingsCompleted adds the number of bookings the sweep closed.
func ObserveBookingsCompleted(count int) {
	bookingsCompleted.Add(float64(count))
}

// ObserveAuthFailure records a rejected authentication attempt.
func ObserveAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}

// IncrementSubscribers tracks an announcement feed client connecting.
func IncrementSubscribers() {
	announcementSubscribers.Inc()
}

// DecrementSubscribers tracks an announcement feed client disconnecting.
func DecrementSubscribers() {
	announcementSubscribers.Dec()
}
