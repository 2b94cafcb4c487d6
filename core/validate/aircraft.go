package validate

import (
	"context"
	"fmt"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// AircraftValidator checks fleet assignments: the tail exists and is
// active, the type matches, no maintenance window overlaps the flight,
// and same-tail turnarounds meet the type-specific minimum.
type AircraftValidator struct{}

func (AircraftValidator) Category() model.Category { return model.CategoryAircraft }

func (v AircraftValidator) Validate(ctx context.Context, _ []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	for _, tail := range idx.Tails() {
		legs := idx.ByTail(tail)
		key := model.TailKey(tail)

		ac, err := ref.Aircraft(ctx, tail)
		if err != nil {
			issues = append(issues, degraded(model.CategoryAircraft, legs[0], err))
			continue
		}
		if ac.Status != refdata.AircraftActive {
			for _, leg := range legs {
				issues = append(issues, model.Issue{
					Category:          model.CategoryAircraft,
					Severity:          model.SeverityCritical,
					Kind:              "aircraft_inactive",
					Occurrences:       []string{leg.ID()},
					Resource:          key,
					Description:       fmt.Sprintf("aircraft %s is %s, not active", tail, ac.Status),
					RecommendedAction: "Assign a different aircraft",
				})
			}
			continue
		}

		for i, leg := range legs {
			if leg.Template.AircraftType != ac.Type {
				issues = append(issues, model.Issue{
					Category:          model.CategoryAircraft,
					Severity:          model.SeverityHigh,
					Kind:              "aircraft_type_mismatch",
					Occurrences:       []string{leg.ID()},
					Resource:          key,
					Description:       fmt.Sprintf("%s requires type %s but %s is a %s", leg.ID(), leg.Template.AircraftType, tail, ac.Type),
					RecommendedAction: "Assign the correct aircraft type or update the flight's equipment",
				})
			}
			if w, ok := ac.InMaintenance(leg.Departure, leg.Arrival); ok {
				issues = append(issues, model.Issue{
					Category:          model.CategoryAircraft,
					Severity:          model.SeverityCritical,
					Kind:              "maintenance_conflict",
					Occurrences:       []string{leg.ID()},
					Resource:          key,
					Description:       fmt.Sprintf("aircraft %s is scheduled for %s maintenance during %s", tail, w.Kind, leg.ID()),
					RecommendedAction: "Reschedule the maintenance or assign a different aircraft",
				})
			}
			if i == 0 {
				continue
			}
			prev := legs[i-1]
			gap := leg.Departure.Sub(prev.Arrival)
			min := refdata.MinTurnaround(ac.Type)
			if gap >= 0 && gap < min {
				issues = append(issues, model.Issue{
					Category:          model.CategoryAircraft,
					Severity:          model.SeverityHigh,
					Kind:              "insufficient_turnaround",
					Occurrences:       []string{prev.ID(), leg.ID()},
					Resource:          key,
					Description: fmt.Sprintf("turnaround %dmin between %s and %s is below the %dmin minimum for %s aircraft",
						int(gap.Minutes()), prev.ID(), leg.ID(), int(min.Minutes()), refdata.CategoryOf(ac.Type)),
					RecommendedAction: "Adjust the departure time or assign a different aircraft",
					Fields: map[string]any{
						"turnaround_minutes": int(gap.Minutes()),
						"minimum_required":   int(min.Minutes()),
					},
				})
			}
		}
	}
	return issues
}
