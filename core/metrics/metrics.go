package metrics

import "time"

// RunRecord summarises one finished pipeline run.
type RunRecord struct {
	RunID             string
	ScheduleID        string
	Version           int
	Outcome           string
	Duration          time.Duration
	Occurrences       int
	Issues            int
	ConflictsDetected int
	ConflictsResolved int
	Time              time.Time
}

// MetricsSink records pipeline run outcomes for observability purposes.
type MetricsSink interface {
	RecordRun(rec RunRecord) error
}

// StageRecord captures one stage execution within a run.
type StageRecord struct {
	RunID    string
	Stage    string
	Status   string
	Duration time.Duration
	Time     time.Time
}

// StageRecorder records per-stage timings.
type StageRecorder interface {
	RecordStage(rec StageRecord) error
}

// ConflictRecord is one detected conflict, flattened for recording.
type ConflictRecord struct {
	RunID       string
	ConflictID  string
	Type        string
	Severity    string
	ImpactScore float64
	Time        time.Time
}

// ConflictRecorder records the conflicts a detection pass produced.
type ConflictRecorder interface {
	RecordConflicts(recs []ConflictRecord) error
}

// ResolutionRecord is one conflict status transition.
type ResolutionRecord struct {
	RunID      string
	ConflictID string
	From       string
	To         string
	Time       time.Time
}

// ResolutionRecorder records resolution workflow transitions.
type ResolutionRecorder interface {
	RecordResolution(rec ResolutionRecord) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error               { return nil }
func (NopSink) RecordStage(StageRecord) error           { return nil }
func (NopSink) RecordConflicts([]ConflictRecord) error  { return nil }
func (NopSink) RecordResolution(ResolutionRecord) error { return nil }
