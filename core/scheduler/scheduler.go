// Package scheduler triggers recurring pipeline runs. Schedules drift as
// change-sets land between runs, so deployments revalidate on a fixed
// interval instead of only on demand.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/flightworks/schedpipe/core/logger"
)

// Config defines revalidation parameters loaded from configuration.
type Config struct {
	IntervalMinutes int `json:"interval_minutes"`
}

// Interval returns the configured tick period.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// RunFunc executes one pipeline run. Errors are logged and do not stop
// the scheduler; a blocking conflict today may be resolvable after the
// next change-set.
type RunFunc func(ctx context.Context) error

// Scheduler re-runs the pipeline on a fixed interval.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	log      logger.Logger
}

// New creates a Scheduler. The interval must be positive.
func New(cfg Config, run RunFunc, log logger.Logger) (*Scheduler, error) {
	if cfg.IntervalMinutes <= 0 {
		return nil, errors.New("scheduler: interval_minutes must be positive")
	}
	if run == nil || log == nil {
		return nil, errors.New("scheduler: nil parameter provided to New")
	}
	return &Scheduler{interval: cfg.Interval(), run: run, log: log}, nil
}

// Start runs immediately, then on every tick until the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.run(ctx); err != nil {
		s.log.Errorf("scheduled run: %v", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.run(ctx); err != nil {
				s.log.Errorf("scheduled run: %v", err)
			}
		}
	}
}
