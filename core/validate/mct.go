package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// Connection windows: a departure this close to an arrival at the same
// airport is treated as a passenger connection.
const (
	minConnectionGap = 0
	maxConnectionGap = 6 * time.Hour
)

// MCTValidator checks minimum connect times for chained occurrences at
// the same airport, applying terminal-change, interline and baggage
// add-ons on top of the airport's base MCT.
type MCTValidator struct{}

func (MCTValidator) Category() model.Category { return model.CategoryMCT }

func (v MCTValidator) Validate(ctx context.Context, occs []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	// Arrivals paired with later departures from the same airport.
	for _, inbound := range occs {
		for _, outbound := range occs {
			if inbound.ID() == outbound.ID() || inbound.Template.Destination != outbound.Template.Origin {
				continue
			}
			gap := outbound.Departure.Sub(inbound.Arrival)
			if gap < minConnectionGap || gap > maxConnectionGap {
				continue
			}
			issues = append(issues, v.checkConnection(ctx, inbound, outbound, gap, idx, ref)...)
		}
	}
	return issues
}

func (v MCTValidator) checkConnection(ctx context.Context, inbound, outbound model.ScheduleInstance, gap time.Duration, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	airport := inbound.Template.Destination
	ap, err := ref.Airport(ctx, airport)
	if err != nil {
		return []model.Issue{degraded(model.CategoryMCT, inbound, err)}
	}
	origin, err := ref.Airport(ctx, inbound.Template.Origin)
	if err != nil {
		return []model.Issue{degraded(model.CategoryMCT, inbound, err)}
	}
	dest, err := ref.Airport(ctx, outbound.Template.Destination)
	if err != nil {
		return []model.Issue{degraded(model.CategoryMCT, outbound, err)}
	}

	conn := connectionType(origin.Country != ap.Country, dest.Country != ap.Country)
	required, err := ref.MCT(ctx, airport, conn)
	if err != nil {
		return []model.Issue{degraded(model.CategoryMCT, inbound, err)}
	}
	if conn == refdata.ConnIntDom || conn == refdata.ConnDomInt {
		// Mixed connections cross between the international and
		// domestic terminals.
		required += refdata.AddOnTerminalChange
	}
	interline := inbound.Template.Carrier != outbound.Template.Carrier
	if interline {
		required += refdata.AddOnInterline
		if origin.Country != ap.Country {
			// International interline forces a baggage recheck.
			required += refdata.AddOnBaggageRecheck
		}
	}

	if gap >= required {
		return nil
	}
	return []model.Issue{{
		Category:    model.CategoryMCT,
		Severity:    model.SeverityHigh,
		Kind:        "below_mct",
		Occurrences: []string{inbound.ID(), outbound.ID()},
		Resource:    idx.AirportKeyFor(airport, index.MovementArrival, inbound.Arrival),
		Description: fmt.Sprintf("connection %s -> %s at %s is %dmin, below the %dmin %s MCT",
			inbound.ID(), outbound.ID(), airport, int(gap.Minutes()), int(required.Minutes()), conn),
		RecommendedAction: "Retime the outbound departure or drop the connection from sale",
		Fields: map[string]any{
			"connection_minutes": int(gap.Minutes()),
			"required_minutes":   int(required.Minutes()),
			"interline":          interline,
		},
	}}
}

func connectionType(inboundIntl, outboundIntl bool) string {
	switch {
	case inboundIntl && outboundIntl:
		return refdata.ConnIntInt
	case inboundIntl:
		return refdata.ConnIntDom
	case outboundIntl:
		return refdata.ConnDomInt
	default:
		return refdata.ConnDomDom
	}
}
