package model

import "errors"

// Template-level errors are rejected at the ingestion boundary and never
// reach expansion.
var (
	ErrInvalidPattern   = errors.New("invalid operating-day pattern")
	ErrInvalidDateRange = errors.New("invalid effective date range")
)

// ErrInvariantViolation marks a broken pipeline invariant, such as a
// transition out of a terminal conflict state. It is fatal to the run and
// must never be swallowed.
var ErrInvariantViolation = errors.New("invariant violation")
