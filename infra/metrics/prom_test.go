package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/flightworks/schedpipe/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	if err := sink.RecordRun(coremetrics.RunRecord{
		RunID: "r1", Outcome: "completed", Duration: 2 * time.Second, Occurrences: 90,
	}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	ps := sink.(*PromSink)
	if err := ps.RecordStage(coremetrics.StageRecord{Stage: "validate", Status: "completed", Duration: time.Second}); err != nil {
		t.Fatalf("record stage: %v", err)
	}
	if err := ps.RecordConflicts([]coremetrics.ConflictRecord{
		{Type: "aircraft_overlap", Severity: "high"},
		{Type: "mct_violation", Severity: "medium"},
	}); err != nil {
		t.Fatalf("record conflicts: %v", err)
	}
	if err := ps.RecordResolution(coremetrics.ResolutionRecord{To: "resolved"}); err != nil {
		t.Fatalf("record resolution: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"pipeline_runs_total",
		"pipeline_stage_duration_seconds",
		"pipeline_conflicts_total",
		"pipeline_resolution_transitions_total",
		"pipeline_occurrences",
	} {
		if !names[want] {
			t.Fatalf("metric %s not registered, have %v", want, names)
		}
	}
}

func TestNewMetricsSinkDefaultsToNop(t *testing.T) {
	sink, err := coremetrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("default sink = %T, want NopSink", sink)
	}
}
