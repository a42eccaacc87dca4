// Package jobmetrics records asynq task outcomes.
package jobmetrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Task outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeRetry   = "retry"
	OutcomeDropped = "dropped"
)

// Metrics holds the collectors for task processing.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the task collectors on registerer, falling back to the
// default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_jobs_total",
			Help: "Processed tasks partitioned by task type and outcome.",
		}, []string{"task", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_jobs_failures_total",
			Help: "Failed task attempts, retried or dropped.",
		}, []string{"task"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "club_job_duration_seconds",
			Help:    "Task handler duration in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"task"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration)
	return m
}

// Outcome classifies a handler result. Errors wrapping asynq.SkipRetry are
// archived by the server rather than retried.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, asynq.SkipRetry):
		return OutcomeDropped
	default:
		return OutcomeRetry
	}
}

// Observe records one handler run. A nil receiver is a no-op.
func (m *Metrics) Observe(task string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := Outcome(err)
	if outcome != OutcomeSuccess {
		m.failures.WithLabelValues(task).Inc()
	}
	m.runs.WithLabelValues(task, outcome).Inc()
	m.duration.WithLabelValues(task).Observe(elapsed.Seconds())
}

// Middleware instruments every task dispatched through an asynq.ServeMux.
func (m *Metrics) Middleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			start := time.Now()
			err := next.ProcessTask(ctx, t)
			m.Observe(t.Type(), err, time.Since(start))
			return err
		})
	}
}
