package metrics

import (
	coremetrics "github.com/flightworks/schedpipe/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records pipeline activity in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	stages      *prometheus.HistogramVec
	conflicts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	occurrences prometheus.Gauge
}

// NewPromSink registers pipeline metrics on the default Prometheus
// registerer. The exposition server is started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Wall time of each pipeline stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage", "status"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_conflicts_total",
			Help: "Conflicts detected, by type and severity",
		}, []string{"type", "severity"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_resolution_transitions_total",
			Help: "Resolution workflow transitions",
		}, []string{"to"}),
		occurrences: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipeline_occurrences",
			Help: "Occurrences expanded in the most recent run",
		}),
	}
	collectors := []prometheus.Collector{s.runs, s.runDuration, s.stages, s.conflicts, s.transitions, s.occurrences}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordRun counts the run and observes its duration.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.Outcome).Inc()
	s.runDuration.WithLabelValues(rec.Outcome).Observe(rec.Duration.Seconds())
	s.occurrences.Set(float64(rec.Occurrences))
	return nil
}

// RecordStage observes the stage duration.
func (s *PromSink) RecordStage(rec coremetrics.StageRecord) error {
	s.stages.WithLabelValues(rec.Stage, rec.Status).Observe(rec.Duration.Seconds())
	return nil
}

// RecordConflicts counts detected conflicts by type and severity.
func (s *PromSink) RecordConflicts(recs []coremetrics.ConflictRecord) error {
	for _, r := range recs {
		s.conflicts.WithLabelValues(r.Type, r.Severity).Inc()
	}
	return nil
}

// RecordResolution counts workflow transitions by target status.
func (s *PromSink) RecordResolution(rec coremetrics.ResolutionRecord) error {
	s.transitions.WithLabelValues(rec.To).Inc()
	return nil
}
