package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// SlotValidator checks that movements at coordinated airports hold a
// matching confirmed slot within its tolerance window.
type SlotValidator struct{}

func (SlotValidator) Category() model.Category { return model.CategorySlot }

func (v SlotValidator) Validate(ctx context.Context, occs []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	for _, occ := range occs {
		issues = append(issues, v.checkMovement(ctx, occ, occ.Template.Origin, index.MovementDeparture, occ.Departure, occ.Template.DepartureTime, idx, ref)...)
		issues = append(issues, v.checkMovement(ctx, occ, occ.Template.Destination, index.MovementArrival, occ.Arrival, occ.Template.ArrivalTime, idx, ref)...)
	}
	return issues
}

func (v SlotValidator) checkMovement(ctx context.Context, occ model.ScheduleInstance, airport, movement string, at time.Time, local model.TimeOfDay, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	ap, err := ref.Airport(ctx, airport)
	if err != nil {
		return []model.Issue{degraded(model.CategorySlot, occ, err)}
	}
	if !ap.Coordinated {
		return nil
	}
	key := idx.AirportKeyFor(airport, movement, at)

	slot, err := ref.Slot(ctx, airport, movement, occ.Template.Designator(), occ.Date)
	if err != nil {
		return []model.Issue{{
			Category:          model.CategorySlot,
			Severity:          model.SeverityCritical,
			Kind:              "missing_slot",
			Occurrences:       []string{occ.ID()},
			Resource:          key,
			Description:       fmt.Sprintf("no %s slot allocated at %s (Level 3 coordinated) for %s", movement, airport, occ.ID()),
			RecommendedAction: fmt.Sprintf("Request a %s slot from the %s coordinator for %s", movement, airport, local),
		}}
	}

	var issues []model.Issue
	diff := time.Duration(local-slot.Time) * time.Minute
	if diff < -slot.ToleranceBefore || diff > slot.ToleranceAfter {
		issues = append(issues, model.Issue{
			Category:          model.CategorySlot,
			Severity:          model.SeverityHigh,
			Kind:              "slot_time_mismatch",
			Occurrences:       []string{occ.ID()},
			Resource:          key,
			Description:       fmt.Sprintf("scheduled %s time %s at %s differs from slot time %s beyond tolerance", movement, local, airport, slot.Time),
			RecommendedAction: "Adjust the schedule to the slot time or request a slot change",
			Fields:            map[string]any{"slot_time": slot.Time.String(), "offset_minutes": int(diff.Minutes())},
		})
	}
	if !slot.Confirmed {
		issues = append(issues, model.Issue{
			Category:          model.CategorySlot,
			Severity:          model.SeverityMedium,
			Kind:              "slot_not_confirmed",
			Occurrences:       []string{occ.ID()},
			Resource:          key,
			Description:       fmt.Sprintf("%s slot at %s for %s not yet confirmed by the coordinator", movement, airport, occ.ID()),
			RecommendedAction: "Follow up with the airport coordinator for confirmation",
		})
	}
	return issues
}
