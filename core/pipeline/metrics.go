package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	stageLatency      *prometheus.HistogramVec
	validatorsRun     *prometheus.CounterVec
	conflictsDetected *prometheus.CounterVec
	runsByOutcome     *prometheus.CounterVec
	blockingGauge     prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedule_stage_latency_seconds",
			Help:    "Latency of pipeline stages from start to terminal status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage", "status"},
	)
	val := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_validators_run_total",
			Help: "Number of validator executions",
		},
		[]string{"category"},
	)
	con := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_conflicts_detected_total",
			Help: "Number of conflicts produced by detection",
		},
		[]string{"type"},
	)
	run := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_runs_total",
			Help: "Number of pipeline runs by terminal outcome",
		},
		[]string{"outcome"},
	)
	blk := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "schedule_blocking_conflicts",
			Help: "Blocking conflicts left by the most recent run",
		},
	)
	return lat, val, con, run, blk
}

func init() {
	stageLatency, validatorsRun, conflictsDetected, runsByOutcome, blockingGauge = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers pipeline metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(stageLatency, validatorsRun, conflictsDetected, runsByOutcome, blockingGauge)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	stageLatency, validatorsRun, conflictsDetected, runsByOutcome, blockingGauge = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
