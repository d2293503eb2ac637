package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reflectctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"server", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reflectctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"server", "method", "path", "status"},
	)
	actionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reflectctl",
			Subsystem: "actions",
			Name:      "runs_total",
			Help:      "Action invocations by key, mode and outcome.",
		},
		[]string{"server", "key", "mode", "outcome"},
	)
	actionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reflectctl",
			Subsystem: "actions",
			Name:      "run_duration_seconds",
			Help:      "Action invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"server", "key", "mode", "outcome"},
	)
	actionChunks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reflectctl",
			Subsystem: "actions",
			Name:      "chunks_total",
			Help:      "Chunks streamed to clients during action invocations.",
		},
		[]string{"server", "key"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, actionRuns, actionDuration, actionChunks)
	})
}

func RecordHTTPRequest(server, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(server, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(server, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordActionRun(server, key, mode string, success bool, chunks int, duration time.Duration) {
	RegisterMetrics()
	outcome := "error"
	if success {
		outcome = "ok"
	}
	actionRuns.WithLabelValues(server, key, mode, outcome).Inc()
	actionDuration.WithLabelValues(server, key, mode, outcome).Observe(duration.Seconds())
	if chunks > 0 {
		actionChunks.WithLabelValues(server, key).Add(float64(chunks))
	}
}
