// Package events defines the progress notifications a pipeline run
// publishes on the in-process bus. Subscribers (metrics, publication,
// operator projections) receive copies and must never mutate pipeline
// state through them.
package events

import (
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

// Event is the sum of everything published on the run bus.
type Event interface{ isEvent() }

// RunEvent reports a run-level status change.
type RunEvent struct {
	RunID      string
	ScheduleID string
	Version    int
	Status     string
	At         time.Time
}

// StageEvent reports one stage's status change within a run.
type StageEvent struct {
	RunID  string
	Stage  string
	Status string
	Err    string
	At     time.Time
}

// ConflictEvent announces a newly detected conflict.
type ConflictEvent struct {
	RunID    string
	Conflict model.Conflict
	At       time.Time
}

// ResolutionEvent records a conflict's status transition.
type ResolutionEvent struct {
	RunID      string
	ConflictID string
	From       model.ResolutionStatus
	To         model.ResolutionStatus
	At         time.Time
}

func (RunEvent) isEvent()        {}
func (StageEvent) isEvent()      {}
func (ConflictEvent) isEvent()   {}
func (ResolutionEvent) isEvent() {}
