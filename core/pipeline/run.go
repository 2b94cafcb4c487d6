package pipeline

import (
	"errors"
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

// ErrRunCancelled reports cooperative cancellation of a run. Partial
// stage results are discarded; the run keeps its cancelled status.
var ErrRunCancelled = errors.New("pipeline run cancelled")

// Stage identifies one step of the pipeline.
type Stage int

const (
	StageExpand Stage = iota
	StageValidate
	StageDetect
	StageResolve
)

func (s Stage) String() string {
	switch s {
	case StageExpand:
		return "expand"
	case StageValidate:
		return "validate"
	case StageDetect:
		return "detect"
	case StageResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageExpand, StageValidate, StageDetect, StageResolve}
}

// StageStatus tracks one stage within a run.
type StageStatus int

const (
	StageQueued StageStatus = iota
	StageRunning
	StageCompleted
	StageFailed
	StageSkipped
)

func (s StageStatus) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageRunning:
		return "running"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// RunStatus is the run-level lifecycle state.
type RunStatus int

const (
	RunPending RunStatus = iota
	RunRunning
	RunCompleted
	RunFailed
	RunCancelled
)

func (s RunStatus) String() string {
	switch s {
	case RunPending:
		return "pending"
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunFailed:
		return "failed"
	case RunCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run admits no further work.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunCancelled
}

// StageResult is the tracked outcome of one stage.
type StageResult struct {
	Stage      Stage
	Status     StageStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Err        string
}

// Counts aggregates run progress for operator projections.
type Counts struct {
	Occurrences       int
	Issues            int
	ConflictsDetected int
	ConflictsResolved int
}

// PipelineRun is one execution over one schedule version. It is a plain
// value owned by its run; nothing outside the orchestrator mutates it.
type PipelineRun struct {
	ID         string
	ScheduleID string
	Version    int

	Status RunStatus
	Stages []StageResult
	Counts Counts

	Occurrences []model.ScheduleInstance
	Issues      []model.Issue
	Conflicts   []model.Conflict

	// BlockingConflicts lists the conflict IDs that kept the run from
	// completing. Empty on a completed run.
	BlockingConflicts []string

	StartedAt  time.Time
	FinishedAt time.Time
	Err        string
}

func newRun(id, scheduleID string, version int, at time.Time) *PipelineRun {
	stages := make([]StageResult, 0, len(Stages()))
	for _, s := range Stages() {
		stages = append(stages, StageResult{Stage: s, Status: StageQueued})
	}
	return &PipelineRun{
		ID:         id,
		ScheduleID: scheduleID,
		Version:    version,
		Status:     RunPending,
		Stages:     stages,
		StartedAt:  at,
	}
}

func (r *PipelineRun) stage(s Stage) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Stage == s {
			return &r.Stages[i]
		}
	}
	return nil
}

// StageStatusOf returns the tracked status of a stage.
func (r *PipelineRun) StageStatusOf(s Stage) StageStatus {
	if sr := r.stage(s); sr != nil {
		return sr.Status
	}
	return StageQueued
}

// FailedStage names the stage the run stopped at, or the empty string.
func (r *PipelineRun) FailedStage() string {
	for _, sr := range r.Stages {
		if sr.Status == StageFailed {
			return sr.Stage.String()
		}
	}
	return ""
}

// blocking returns the IDs of conflicts that prevent completion: any
// conflict of blocking severity not settled by the resolution workflow.
func blocking(conflicts []model.Conflict) []string {
	var ids []string
	for _, c := range conflicts {
		if c.Severity.Blocking() && !c.Status.Settled() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
