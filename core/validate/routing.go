package validate

import (
	"context"
	"fmt"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// rangeMargin is the reserve factor applied over great-circle distance
// when comparing against still-air aircraft range.
const rangeMargin = 1.1

// RoutingValidator checks aircraft routing continuity (the tail's next
// departure airport must match its previous arrival airport) and that
// each leg's great-circle distance fits the aircraft's range.
type RoutingValidator struct{}

func (RoutingValidator) Category() model.Category { return model.CategoryRouting }

func (v RoutingValidator) Validate(ctx context.Context, _ []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	for _, tail := range idx.Tails() {
		legs := idx.ByTail(tail)
		key := model.TailKey(tail)
		for i, leg := range legs {
			issues = append(issues, v.checkRange(ctx, leg, key, ref)...)
			if i == 0 {
				continue
			}
			prev := legs[i-1]
			if prev.Template.Destination != leg.Template.Origin {
				issues = append(issues, model.Issue{
					Category:    model.CategoryRouting,
					Severity:    model.SeverityCritical,
					Kind:        "routing_discontinuity",
					Occurrences: []string{prev.ID(), leg.ID()},
					Resource:    key,
					Description: fmt.Sprintf("tail %s arrives at %s after %s but departs %s for %s",
						tail, prev.Template.Destination, prev.ID(), leg.Template.Origin, leg.ID()),
					RecommendedAction: "Add a positioning flight or assign a different aircraft",
				})
			}
		}
	}
	return issues
}

func (v RoutingValidator) checkRange(ctx context.Context, leg model.ScheduleInstance, key model.ResourceKey, ref refdata.Provider) []model.Issue {
	origin, err := ref.Airport(ctx, leg.Template.Origin)
	if err != nil {
		return []model.Issue{degraded(model.CategoryRouting, leg, err)}
	}
	dest, err := ref.Airport(ctx, leg.Template.Destination)
	if err != nil {
		return []model.Issue{degraded(model.CategoryRouting, leg, err)}
	}
	distance := refdata.GreatCircleNM(origin, dest)
	maxRange := refdata.RangeNM(leg.Template.AircraftType)
	if distance*rangeMargin <= maxRange {
		return nil
	}
	return []model.Issue{{
		Category:    model.CategoryRouting,
		Severity:    model.SeverityCritical,
		Kind:        "range_exceeded",
		Occurrences: []string{leg.ID()},
		Resource:    key,
		Description: fmt.Sprintf("%s is %.0fnm with reserves but type %s ranges %.0fnm",
			leg.ID(), distance*rangeMargin, leg.Template.AircraftType, maxRange),
		RecommendedAction: "Assign a longer-range type or add a fuel stop",
		Fields:            map[string]any{"distance_nm": distance, "range_nm": maxRange},
	}}
}
