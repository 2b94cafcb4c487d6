package validate

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

var patternRE = regexp.MustCompile(`^[1-7X]{7}$`)

// PatternValidator checks template-level consistency: operating-day
// format, stated weekly frequency against the pattern, and that two
// templates for the same flight number never overlap effective ranges
// with different equipment.
type PatternValidator struct{}

func (PatternValidator) Category() model.Category { return model.CategoryPattern }

func (v PatternValidator) Validate(_ context.Context, occs []model.ScheduleInstance, _ *index.ResourceIndex, _ refdata.Provider) []model.Issue {
	// Recover the template set from the occurrences; pattern findings
	// are per template, attached to its first occurrence.
	firstOcc := make(map[string]model.ScheduleInstance)
	templates := make(map[string]*model.FlightTemplate)
	for _, occ := range occs {
		id := occ.Template.ID
		if _, seen := templates[id]; !seen || occ.Date.Before(firstOcc[id].Date) {
			templates[id] = occ.Template
			firstOcc[id] = occ
		}
	}
	ids := make([]string, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var issues []model.Issue
	for _, id := range ids {
		issues = append(issues, v.checkTemplate(templates[id], firstOcc[id])...)
	}
	issues = append(issues, v.checkEquipmentOverlaps(ids, templates, firstOcc)...)
	return issues
}

func (v PatternValidator) checkTemplate(tpl *model.FlightTemplate, occ model.ScheduleInstance) []model.Issue {
	var issues []model.Issue
	if !patternRE.MatchString(string(tpl.Days)) {
		issues = append(issues, model.Issue{
			Category:          model.CategoryPattern,
			Severity:          model.SeverityCritical,
			Kind:              "invalid_pattern_format",
			Occurrences:       []string{occ.ID()},
			Description:       fmt.Sprintf("%s operating-day pattern %q is not [1-7X]{7}", tpl.Designator(), tpl.Days),
			RecommendedAction: "Use digits 1-7 for operating days and X for non-operating positions",
		})
		return issues
	}
	if tpl.FrequencyPerWeek > 0 {
		if actual := tpl.Days.Frequency(); actual != tpl.FrequencyPerWeek {
			issues = append(issues, model.Issue{
				Category:    model.CategoryPattern,
				Severity:    model.SeverityMedium,
				Kind:        "frequency_mismatch",
				Occurrences: []string{occ.ID()},
				Description: fmt.Sprintf("%s states %dx weekly but pattern %s operates %dx",
					tpl.Designator(), tpl.FrequencyPerWeek, tpl.Days, actual),
				RecommendedAction: "Correct the stated frequency or the operating-day pattern",
				Fields:            map[string]any{"stated": tpl.FrequencyPerWeek, "actual": actual},
			})
		}
	}
	return issues
}

func (v PatternValidator) checkEquipmentOverlaps(ids []string, templates map[string]*model.FlightTemplate, firstOcc map[string]model.ScheduleInstance) []model.Issue {
	var issues []model.Issue
	for i, aID := range ids {
		for _, bID := range ids[i+1:] {
			a, b := templates[aID], templates[bID]
			if a.Designator() != b.Designator() || a.AircraftType == b.AircraftType {
				continue
			}
			if a.EffectiveFrom.After(b.EffectiveTo) || b.EffectiveFrom.After(a.EffectiveTo) {
				continue
			}
			issues = append(issues, model.Issue{
				Category:    model.CategoryPattern,
				Severity:    model.SeverityMedium,
				Kind:        "equipment_overlap",
				Occurrences: []string{firstOcc[aID].ID(), firstOcc[bID].ID()},
				Description: fmt.Sprintf("flight %s has overlapping effective ranges with equipment %s and %s",
					a.Designator(), a.AircraftType, b.AircraftType),
				RecommendedAction: "Split the effective ranges or align the equipment",
			})
		}
	}
	return issues
}
