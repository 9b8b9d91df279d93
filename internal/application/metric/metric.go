package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	httpErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP errors",
		},
		[]string{"method", "endpoint", "status"},
	)

	wsActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_sessions",
			Help: "Number of active realtime sessions",
		},
	)

	wsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_total",
			Help: "Total number of realtime events received, by type",
		},
		[]string{"type"},
	)

	roomSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_saves_total",
			Help: "Total number of room content flushes, by result",
		},
		[]string{"result"},
	)
)

// RecordHTTPMetrics records metrics for a single HTTP request.
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())

	if status >= 400 {
		httpErrorsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	}
}

func IncrementActiveSessions() {
	wsActiveSessions.Inc()
}

func DecrementActiveSessions() {
	wsActiveSessions.Dec()
}

func RecordEvent(eventType string) {
	wsEventsTotal.WithLabelValues(eventType).Inc()
}

func RecordRoomSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	roomSavesTotal.WithLabelValues(result).Inc()
}
