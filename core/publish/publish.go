// Package publish defines the distribution boundary. Only completed
// runs leave the pipeline; nothing here is ever called mid-run.
package publish

import (
	"context"
	"errors"
	"time"
)

// ErrNotCompleted reports an attempt to publish a run that did not
// complete. Publishers must reject such summaries.
var ErrNotCompleted = errors.New("run is not completed")

// RunSummary is the payload delivered downstream after a completed run.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	ScheduleID  string    `json:"schedule_id"`
	Version     int       `json:"version"`
	Outcome     string    `json:"outcome"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	Occurrences       int `json:"occurrences"`
	Issues            int `json:"issues"`
	ConflictsDetected int `json:"conflicts_detected"`
	ConflictsResolved int `json:"conflicts_resolved"`

	CompletedAt time.Time `json:"completed_at"`
}

// Completed reports whether the summary may be published.
func (s RunSummary) Completed() bool { return s.Outcome == "completed" }

// Publisher delivers completed-run summaries to distribution.
type Publisher interface {
	Publish(ctx context.Context, s RunSummary) error
}
