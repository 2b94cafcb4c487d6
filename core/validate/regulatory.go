package validate

import (
	"context"
	"fmt"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// RegulatoryValidator checks traffic rights and carrier designation for
// each route, cabotage restrictions for foreign domestic segments, and
// weekly frequency caps from bilateral agreements.
type RegulatoryValidator struct{}

func (RegulatoryValidator) Category() model.Category { return model.CategoryRegulatory }

func (v RegulatoryValidator) Validate(ctx context.Context, occs []model.ScheduleInstance, _ *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	// Route-level findings repeat per occurrence otherwise; check each
	// template's route once and attach its occurrences.
	routes := make(map[string][]model.ScheduleInstance)
	for _, occ := range occs {
		k := occ.Template.Carrier + ":" + occ.Template.Origin + "-" + occ.Template.Destination
		routes[k] = append(routes[k], occ)
	}
	for _, legs := range routes {
		issues = append(issues, v.checkRoute(ctx, legs, ref)...)
	}
	return issues
}

func (v RegulatoryValidator) checkRoute(ctx context.Context, legs []model.ScheduleInstance, ref refdata.Provider) []model.Issue {
	tpl := legs[0].Template
	origin, err := ref.Airport(ctx, tpl.Origin)
	if err != nil {
		return []model.Issue{degraded(model.CategoryRegulatory, legs[0], err)}
	}
	dest, err := ref.Airport(ctx, tpl.Destination)
	if err != nil {
		return []model.Issue{degraded(model.CategoryRegulatory, legs[0], err)}
	}
	ids := occurrenceIDs(legs)

	rights, err := ref.Rights(ctx, tpl.Carrier, origin.Country, dest.Country)
	if err != nil {
		return []model.Issue{degraded(model.CategoryRegulatory, legs[0], err)}
	}

	// Domestic segment in a strict-cabotage country: only home carriers.
	if origin.Country == dest.Country {
		if rights.Home != origin.Country && refdata.StrictCabotage(origin.Country) {
			return []model.Issue{{
				Category:    model.CategoryRegulatory,
				Severity:    model.SeverityCritical,
				Kind:        "cabotage_violation",
				Occurrences: ids,
				Description: fmt.Sprintf("carrier %s (home %s) may not operate domestic %s-%s within %s",
					tpl.Carrier, rights.Home, tpl.Origin, tpl.Destination, origin.Country),
				RecommendedAction: "Operate via a local partner or drop the segment",
			}}
		}
		return nil
	}

	// Intra open-skies-area routes need no bilateral grant for area carriers.
	if refdata.OpenSkiesArea(origin.Country, dest.Country) && refdata.OpenSkiesArea(rights.Home, origin.Country) {
		return nil
	}

	var issues []model.Issue
	if !rights.Granted {
		issues = append(issues, model.Issue{
			Category:    model.CategoryRegulatory,
			Severity:    model.SeverityCritical,
			Kind:        "missing_traffic_rights",
			Occurrences: ids,
			Description: fmt.Sprintf("carrier %s lacks traffic rights for %s-%s (%s-%s)",
				tpl.Carrier, tpl.Origin, tpl.Destination, origin.Country, dest.Country),
			RecommendedAction: "Secure rights under the bilateral agreement before publication",
		})
	} else if !rights.Designated {
		issues = append(issues, model.Issue{
			Category:    model.CategoryRegulatory,
			Severity:    model.SeverityCritical,
			Kind:        "not_designated_carrier",
			Occurrences: ids,
			Description: fmt.Sprintf("carrier %s is not designated under the %s-%s bilateral agreement",
				tpl.Carrier, origin.Country, dest.Country),
			RecommendedAction: "Apply for designated-carrier status or codeshare with a designated carrier",
		})
	}
	if rights.WeeklyCap > 0 {
		if freq := tpl.Days.Frequency(); freq > rights.WeeklyCap {
			issues = append(issues, model.Issue{
				Category:    model.CategoryRegulatory,
				Severity:    model.SeverityCritical,
				Kind:        "frequency_cap_exceeded",
				Occurrences: ids,
				Description: fmt.Sprintf("%s operates %dx weekly on %s-%s, above the bilateral cap of %d",
					tpl.Designator(), freq, tpl.Origin, tpl.Destination, rights.WeeklyCap),
				RecommendedAction: "Reduce weekly frequency to the bilateral cap",
				Fields:            map[string]any{"weekly_frequency": freq, "weekly_cap": rights.WeeklyCap},
			})
		}
	}
	return issues
}
