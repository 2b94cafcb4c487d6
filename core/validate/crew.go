package validate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

// CrewValidator checks crew feasibility per base: minimum complement
// coverage, flight-duty-period limits by sector count, overnight rest,
// and monthly/yearly block-hour caps. Every breach is critical.
type CrewValidator struct{}

func (CrewValidator) Category() model.Category { return model.CategoryCrew }

func (v CrewValidator) Validate(ctx context.Context, _ []model.ScheduleInstance, idx *index.ResourceIndex, ref refdata.Provider) []model.Issue {
	var issues []model.Issue
	for _, base := range idx.CrewBases() {
		legs := idx.ByCrewBase(base)
		key := model.CrewBaseKey(base)

		record, err := ref.CrewBase(ctx, base)
		if err != nil {
			issues = append(issues, degraded(model.CategoryCrew, legs[0], err))
			// Duty-time checks below need no base record; keep going.
			record = refdata.CrewBase{Base: base, Pilots: -1, Cabin: -1}
		}

		byDate := groupByDate(legs)
		dates := make([]time.Time, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		for i, date := range dates {
			day := byDate[date]
			issues = append(issues, v.checkComplement(base, key, record, day)...)
			issues = append(issues, v.checkDutyPeriod(base, key, date, day)...)
			if i > 0 && dates[i-1].AddDate(0, 0, 1).Equal(date) {
				issues = append(issues, v.checkRest(base, key, byDate[dates[i-1]], day)...)
			}
		}
		issues = append(issues, v.checkBlockHours(base, key, legs)...)
	}
	return issues
}

func groupByDate(legs []model.ScheduleInstance) map[time.Time][]model.ScheduleInstance {
	out := make(map[time.Time][]model.ScheduleInstance)
	for _, leg := range legs {
		out[leg.Date] = append(out[leg.Date], leg)
	}
	return out
}

// checkComplement verifies the base can staff its peak of simultaneous
// flights at the category-specific complement.
func (CrewValidator) checkComplement(base string, key model.ResourceKey, record refdata.CrewBase, day []model.ScheduleInstance) []model.Issue {
	if record.Pilots < 0 {
		return nil
	}
	needPilots, needCabin := 0, 0
	for _, leg := range day {
		overlapping := 0
		for _, other := range day {
			if leg.Overlaps(other) {
				overlapping++
			}
		}
		p, c := refdata.CrewComplement(refdata.CategoryOf(leg.Template.AircraftType))
		if p*overlapping > needPilots {
			needPilots = p * overlapping
		}
		if c*overlapping > needCabin {
			needCabin = c * overlapping
		}
	}
	if needPilots <= record.Pilots && needCabin <= record.Cabin {
		return nil
	}
	ids := occurrenceIDs(day)
	return []model.Issue{{
		Category:    model.CategoryCrew,
		Severity:    model.SeverityCritical,
		Kind:        "insufficient_crew",
		Occurrences: ids,
		Resource:    key,
		Description: fmt.Sprintf("base %s needs %d pilots / %d cabin crew at peak but holds %d/%d",
			base, needPilots, needCabin, record.Pilots, record.Cabin),
		RecommendedAction: "Increase base staffing or move flights to another base",
	}}
}

// checkDutyPeriod compares the day's span against the FDP table for its
// sector count.
func (CrewValidator) checkDutyPeriod(base string, key model.ResourceKey, date time.Time, day []model.ScheduleInstance) []model.Issue {
	if len(day) == 0 {
		return nil
	}
	first, last := day[0], day[0]
	for _, leg := range day {
		if leg.Departure.Before(first.Departure) {
			first = leg
		}
		if leg.Arrival.After(last.Arrival) {
			last = leg
		}
	}
	duty := last.Arrival.Sub(first.Departure)
	limit := refdata.FDPLimit(len(day))
	if duty <= limit {
		return nil
	}
	return []model.Issue{{
		Category:    model.CategoryCrew,
		Severity:    model.SeverityCritical,
		Kind:        "fdp_exceeded",
		Occurrences: occurrenceIDs(day),
		Resource:    key,
		Description: fmt.Sprintf("base %s duty period %.1fh on %s exceeds the %.1fh limit for %d sectors",
			base, duty.Hours(), date.Format(model.DateLayout), limit.Hours(), len(day)),
		RecommendedAction: "Split the duty across crews or shorten the rotation",
		Fields:            map[string]any{"duty_hours": duty.Hours(), "sectors": len(day)},
	}}
}

// checkRest verifies the gap between consecutive duty days.
func (CrewValidator) checkRest(base string, key model.ResourceKey, prev, next []model.ScheduleInstance) []model.Issue {
	lastArr := prev[0].Arrival
	for _, leg := range prev {
		if leg.Arrival.After(lastArr) {
			lastArr = leg.Arrival
		}
	}
	firstDep := next[0].Departure
	for _, leg := range next {
		if leg.Departure.Before(firstDep) {
			firstDep = leg.Departure
		}
	}
	rest := firstDep.Sub(lastArr)
	if rest >= refdata.MinRest {
		return nil
	}
	return []model.Issue{{
		Category:    model.CategoryCrew,
		Severity:    model.SeverityCritical,
		Kind:        "insufficient_rest",
		Occurrences: append(occurrenceIDs(prev), occurrenceIDs(next)...),
		Resource:    key,
		Description: fmt.Sprintf("base %s crew rest %.1fh is below the %.0fh minimum",
			base, rest.Hours(), refdata.MinRest.Hours()),
		RecommendedAction: "Delay the morning departure or re-pair the duties",
		Fields:            map[string]any{"rest_hours": rest.Hours()},
	}}
}

// checkBlockHours enforces the monthly and yearly block-hour caps.
func (CrewValidator) checkBlockHours(base string, key model.ResourceKey, legs []model.ScheduleInstance) []model.Issue {
	var issues []model.Issue
	monthly := make(map[string]float64)
	yearly := make(map[int]float64)
	for _, leg := range legs {
		monthly[leg.Date.Format("2006-01")] += leg.BlockTime().Hours()
		yearly[leg.Date.Year()] += leg.BlockTime().Hours()
	}
	for month, hours := range monthly {
		if hours > refdata.MaxMonthlyHours {
			issues = append(issues, model.Issue{
				Category:    model.CategoryCrew,
				Severity:    model.SeverityCritical,
				Kind:        "monthly_hours_exceeded",
				Occurrences: occurrenceIDs(legs),
				Resource:    key,
				Description: fmt.Sprintf("base %s flies %.1f block hours in %s, above the %.0fh monthly cap",
					base, hours, month, refdata.MaxMonthlyHours),
				RecommendedAction: "Spread flying across additional crews",
			})
		}
	}
	for year, hours := range yearly {
		if hours > refdata.MaxYearlyHours {
			issues = append(issues, model.Issue{
				Category:    model.CategoryCrew,
				Severity:    model.SeverityCritical,
				Kind:        "yearly_hours_exceeded",
				Occurrences: occurrenceIDs(legs),
				Resource:    key,
				Description: fmt.Sprintf("base %s flies %.1f block hours in %d, above the %.0fh yearly cap",
					base, hours, year, refdata.MaxYearlyHours),
				RecommendedAction: "Spread flying across additional crews",
			})
		}
	}
	return issues
}

func occurrenceIDs(legs []model.ScheduleInstance) []string {
	ids := make([]string, len(legs))
	for i, leg := range legs {
		ids[i] = leg.ID()
	}
	sort.Strings(ids)
	return ids
}
