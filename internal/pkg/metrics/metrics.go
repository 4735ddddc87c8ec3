package metrics

import (
	"time"

	"lendinghub/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_operations_total",
		Help: "Lending operations by outcome",
	}, []string{"operation", "outcome"})

	operationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lending_operation_duration_seconds",
		Help:    "Lending operation latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"operation"})

	sweepTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_sweep_changes_total",
		Help: "State changes applied by periodic sweeps",
	}, []string{"sweep", "change"})
)

// Outcome labels an operation result: success or the error kind
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return domain.KindOf(err).String()
}

// Observe records one finished operation
func Observe(operation string, start time.Time, err error) {
	operationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	operationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SweepChanges adds n changes of one kind made by a sweep
func SweepChanges(sweep, change string, n int) {
	if n <= 0 {
		return
	}
	sweepTotal.WithLabelValues(sweep, change).Add(float64(n))
}
