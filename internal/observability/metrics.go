package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "live_gateway_active_sessions",
		Help: "Number of active live sessions",
	})

	totalSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "live_gateway_sessions_total",
		Help: "Total number of sessions processed",
	})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "live_gateway_session_duration_seconds",
		Help:    "Duration of live sessions in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	// Tool metrics
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_gateway_tool_calls_total",
		Help: "Total number of tool invocations",
	}, []string{"tool", "status"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "live_gateway_tool_latency_seconds",
		Help:    "Tool handler latency in seconds",
		Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1.0, 5.0, 30.0},
	}, []string{"tool"})

	// Event metrics
	eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_gateway_events_total",
		Help: "Total normalized events emitted to clients",
	}, []string{"type"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_gateway_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Media metrics
	audioBytesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_gateway_audio_bytes_total",
		Help: "Total audio bytes processed",
	}, []string{"direction"}) // direction: "in" or "out"

	videoFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "live_gateway_video_frames_total",
		Help: "Total video frames received from clients",
	})

	queueDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_gateway_queue_drops_total",
		Help: "Items dropped because an upstream queue was full",
	}, []string{"queue"})
)

// Metrics tracks metrics for a single session
type Metrics struct {
	sessionID string
	startTime time.Time
}

// NewSessionMetrics creates a new metrics tracker for a session
func NewSessionMetrics(sessionID string) *Metrics {
	return &Metrics{
		sessionID: sessionID,
		startTime: time.Now(),
	}
}

// RecordSessionStart records the start of a session
func (m *Metrics) RecordSessionStart() {
	activeSessions.Inc()
	totalSessions.Inc()
}

// RecordSessionEnd records the end of a session
func (m *Metrics) RecordSessionEnd() {
	activeSessions.Dec()
	duration := time.Since(m.startTime).Seconds()
	sessionDuration.Observe(duration)
}

// RecordToolCall records one tool invocation with its outcome and latency
func (m *Metrics) RecordToolCall(tool string, success bool, latency time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	toolCalls.WithLabelValues(tool, status).Inc()
	toolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordEvent records a normalized event by type
func (m *Metrics) RecordEvent(eventType string) {
	eventsEmitted.WithLabelValues(eventType).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordAudioBytes records audio bytes processed
func (m *Metrics) RecordAudioBytes(direction string, bytes int64) {
	audioBytesProcessed.WithLabelValues(direction).Add(float64(bytes))
}

// RecordVideoFrame records one inbound video frame
func (m *Metrics) RecordVideoFrame() {
	videoFrames.Inc()
}

// RecordQueueDrop records an item dropped from a full upstream queue
func (m *Metrics) RecordQueueDrop(queue string) {
	queueDrops.WithLabelValues(queue).Inc()
}
