package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carpool"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	BookingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_operations_total", Help: "Booking operations by outcome code"},
		[]string{"operation", "code"},
	)
	RideLockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ride_lock_wait_seconds",
		Help:      "Time spent waiting for a ride's exclusive section",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	})

	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "events_emitted_total", Help: "Domain events accepted for dispatch"},
		[]string{"type"},
	)
	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "events_dropped_total", Help: "Domain events dropped because the queue was full or closed"})
	EventDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "event_deliveries_total", Help: "Event deliveries per handler"},
		[]string{"handler", "result"},
	)

	RidesCompletedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rides_completed_total", Help: "Rides marked completed by the sweeper"})
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "websocket_connections", Help: "Open websocket connections"})
)

// Operation outcome label for a successful call
const CodeOK = "OK"
