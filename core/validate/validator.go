// Package validate holds the eight constraint validators. Each validator
// is independent, reads an immutable occurrence set and resource index,
// and emits typed issues; none may mutate its inputs, so the orchestrator
// runs them concurrently without locks. A validator's internal failure
// (typically a missing reference record) degrades to an info-severity
// issue so partial validation results stay usable.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// Validator is one constraint check over an expanded schedule.
type Validator interface {
	Category() model.Category
	Validate(ctx context.Context, occs []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue
}

// All returns the full validator set in category order.
func All() []Validator {
	return []Validator{
		SlotValidator{},
		AircraftValidator{},
		CrewValidator{},
		MCTValidator{},
		CurfewValidator{},
		RegulatoryValidator{},
		RoutingValidator{},
		PatternValidator{},
	}
}

// degraded wraps a reference-data miss as an info issue instead of an
// abort. Non-ErrUnavailable errors are still reported, just flagged as
// validator failures.
func degraded(cat model.Category, occ model.ScheduleInstance, err error) model.Issue {
	kind := "validator_failure"
	if errors.Is(err, refdata.ErrUnavailable) {
		kind = "reference_data_unavailable"
	}
	return model.Issue{
		Category:          cat,
		Severity:          model.SeverityInfo,
		Kind:              kind,
		Occurrences:       []string{occ.ID()},
		Description:       fmt.Sprintf("%s validation degraded for %s: %v", cat, occ.ID(), err),
		RecommendedAction: "Verify reference data coverage and re-run validation",
	}
}
