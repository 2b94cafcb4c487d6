package publish

import (
	"context"
	"fmt"
	"sync"

	corepublish "github.com/flightworks/schedpipe/core/publish"
)

// MockPublisher records summaries in memory for tests.
type MockPublisher struct {
	mu        sync.Mutex
	Summaries []corepublish.RunSummary
	FailRuns  map[string]bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailRuns: make(map[string]bool)}
}

// Publish records the summary or returns an error if configured to fail.
func (m *MockPublisher) Publish(_ context.Context, s corepublish.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.Completed() {
		return fmt.Errorf("run %s (%s): %w", s.RunID, s.Outcome, corepublish.ErrNotCompleted)
	}
	if m.FailRuns[s.RunID] {
		return fmt.Errorf("publish failed")
	}
	m.Summaries = append(m.Summaries, s)
	return nil
}
