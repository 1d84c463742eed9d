package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medscreen/adscreen/internal/core/domain"
)

// BatchMetrics observes the file-level and batch-level lifecycle of the
// orchestrator. Collectors land in the given registerer so one scrape
// endpoint can expose them next to the HTTP series.
type BatchMetrics struct {
	service string

	taskTotal    *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	taskInFlight prometheus.Gauge
	batchTotal   *prometheus.CounterVec
}

func NewBatchMetrics(service string, registry prometheus.Registerer) *BatchMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	taskTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adscreen",
			Subsystem: "batch",
			Name:      "file_tasks_total",
			Help:      "Total processed batch files by terminal state.",
		},
		[]string{"service", "state"},
	)
	taskDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adscreen",
			Subsystem: "batch",
			Name:      "file_task_duration_seconds",
			Help:      "Per-file processing duration in seconds by terminal state.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "state"},
	)
	taskInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "adscreen",
			Subsystem: "batch",
			Name:      "file_tasks_in_flight",
			Help:      "Number of batch files currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adscreen",
			Subsystem: "batch",
			Name:      "batches_total",
			Help:      "Total finished batches by terminal status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(taskTotal, taskDuration, taskInFlight, batchTotal)

	return &BatchMetrics{
		service:      service,
		taskTotal:    taskTotal,
		taskDuration: taskDuration,
		taskInFlight: taskInFlight,
		batchTotal:   batchTotal,
	}
}

func (m *BatchMetrics) TaskStarted() {
	m.taskInFlight.Inc()
}

func (m *BatchMetrics) TaskFinished(state domain.TaskState, duration time.Duration) {
	m.taskInFlight.Dec()
	m.taskTotal.WithLabelValues(m.service, string(state)).Inc()
	m.taskDuration.WithLabelValues(m.service, string(state)).Observe(duration.Seconds())
}

func (m *BatchMetrics) BatchFinished(status domain.BatchStatus) {
	m.batchTotal.WithLabelValues(m.service, string(status)).Inc()
}
