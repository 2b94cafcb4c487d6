package config

import (
	"fmt"
	"time"

	"github.com/flightworks/schedpipe/core/pipeline"
)

// PipelineConfig tunes one orchestrator run.
type PipelineConfig struct {
	// WindowDays is the expansion horizon when no explicit window is
	// given on the command line.
	WindowDays int `json:"window_days"`
	// ToleranceMinutes is the airport bucketing window of the resource
	// index.
	ToleranceMinutes int `json:"tolerance_minutes"`
	// MaxAttempts bounds solution attempts per conflict.
	MaxAttempts int `json:"max_attempts"`
	// StageRetries bounds retries of a transiently failed stage.
	StageRetries int `json:"stage_retries"`
	// BackoffMS is the initial stage retry delay.
	BackoffMS int `json:"backoff_ms"`
	// RetimeStepMinutes is the fallback schedule shift for retiming
	// solutions.
	RetimeStepMinutes int `json:"retime_step_minutes"`
}

// SetDefaults applies sane defaults.
func (c *PipelineConfig) SetDefaults() {
	if c.WindowDays == 0 {
		c.WindowDays = 90
	}
	if c.ToleranceMinutes == 0 {
		c.ToleranceMinutes = 5
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 200
	}
	if c.RetimeStepMinutes == 0 {
		c.RetimeStepMinutes = 30
	}
}

// Validate checks mandatory fields.
func (c PipelineConfig) Validate() error {
	if c.WindowDays < 1 {
		return fmt.Errorf("window_days must be positive")
	}
	if c.ToleranceMinutes < 0 {
		return fmt.Errorf("tolerance_minutes must not be negative")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.StageRetries < 0 {
		return fmt.Errorf("stage_retries must not be negative")
	}
	return nil
}

// Orchestrator converts the section into the pipeline's Config.
func (c PipelineConfig) Orchestrator() pipeline.Config {
	return pipeline.Config{
		Tolerance:    time.Duration(c.ToleranceMinutes) * time.Minute,
		MaxAttempts:  c.MaxAttempts,
		StageRetries: c.StageRetries,
		Backoff:      time.Duration(c.BackoffMS) * time.Millisecond,
		RetimeStep:   time.Duration(c.RetimeStepMinutes) * time.Minute,
	}
}
