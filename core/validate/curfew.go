package validate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// CurfewValidator checks local movement times against airport curfew
// windows. Windows spanning midnight wrap around; an exempt carrier is
// still flagged at info severity for awareness.
type CurfewValidator struct{}

func (CurfewValidator) Category() model.Category { return model.CategoryCurfew }

func (v CurfewValidator) Validate(ctx context.Context, occs []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	for _, occ := range occs {
		issues = append(issues, v.checkMovement(ctx, occ, occ.Template.Origin, index.MovementDeparture, occ.Template.DepartureTime, occ.Departure, idx, ref)...)
		issues = append(issues, v.checkMovement(ctx, occ, occ.Template.Destination, index.MovementArrival, occ.Template.ArrivalTime, occ.Arrival, idx, ref)...)
	}
	return issues
}

func (v CurfewValidator) checkMovement(ctx context.Context, occ model.ScheduleInstance, airport, movement string, local model.TimeOfDay, at time.Time, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	ap, err := ref.Airport(ctx, airport)
	if err != nil {
		return []model.Issue{degraded(model.CategoryCurfew, occ, err)}
	}
	var issues []model.Issue
	for _, curfew := range ap.Curfews {
		if !curfew.Covers(local) {
			continue
		}
		if slices.Contains(curfew.Exemptions, occ.Template.Carrier) {
			issues = append(issues, model.Issue{
				Category:    model.CategoryCurfew,
				Severity:    model.SeverityInfo,
				Kind:        "curfew_exemption_used",
				Occurrences: []string{occ.ID()},
				Resource:    idx.AirportKeyFor(airport, movement, at),
				Description: fmt.Sprintf("%s %s at %s falls inside curfew %s-%s but carrier %s holds an exemption",
					occ.ID(), movement, airport, curfew.Start, curfew.End, occ.Template.Carrier),
				RecommendedAction: "Confirm the exemption remains valid for the season",
			})
			continue
		}
		issues = append(issues, model.Issue{
			Category:    model.CategoryCurfew,
			Severity:    model.SeverityCritical,
			Kind:        "curfew_violation",
			Occurrences: []string{occ.ID()},
			Resource:    idx.AirportKeyFor(airport, movement, at),
			Description: fmt.Sprintf("%s %s at %s local %s falls inside curfew %s-%s",
				occ.ID(), movement, airport, local, curfew.Start, curfew.End),
			RecommendedAction: "Reschedule outside the curfew or apply for an exemption",
			Fields:            map[string]any{"curfew": curfew.Start.String() + "-" + curfew.End.String(), "strict": curfew.Strict},
		})
	}
	return issues
}
