// Package expand turns weekly operating-day patterns into concrete
// calendar occurrences. Expansion is pure: the same template and window
// always produce the same instances, so occurrences are never stored.
package expand

import (
	"fmt"
	"iter"
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

// clampWindow intersects the requested window with the template's
// effective range. An inverted result means the intersection is empty.
func clampWindow(tpl *model.FlightTemplate, start, end time.Time) (time.Time, time.Time) {
	if tpl.EffectiveFrom.After(start) {
		start = tpl.EffectiveFrom
	}
	if tpl.EffectiveTo.Before(end) {
		end = tpl.EffectiveTo
	}
	return start, end
}

// Expand returns the occurrences of tpl within [start, end] as a lazy,
// restartable sequence. A date yields an occurrence iff the pattern
// position for its weekday holds that weekday's own digit. It fails with
// ErrInvalidPattern or ErrInvalidDateRange; an empty clamped window is a
// valid, empty sequence.
func Expand(tpl *model.FlightTemplate, start, end time.Time) (iter.Seq[model.ScheduleInstance], error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	from, to := clampWindow(tpl, start, end)
	return func(yield func(model.ScheduleInstance) bool) {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !tpl.Days.Operates(model.WeekdayOf(d)) {
				continue
			}
			if !yield(materialize(tpl, d)) {
				return
			}
		}
	}, nil
}

// materialize resolves absolute timestamps for one operating date.
func materialize(tpl *model.FlightTemplate, date time.Time) model.ScheduleInstance {
	arrDate := date.AddDate(0, 0, tpl.ArrivalDayOffset)
	return model.ScheduleInstance{
		Template:  tpl,
		Date:      date,
		Departure: tpl.DepartureTime.On(date),
		Arrival:   tpl.ArrivalTime.On(arrDate),
	}
}

// Window expands every template over the same date window and collects
// the result. A template that fails validation is reported as a critical
// finding and skipped instead of aborting the whole window, and every
// occurrence that computes a non-positive block time is reported as a
// data-quality issue rather than dropped silently.
func Window(templates []model.FlightTemplate, start, end time.Time) ([]model.ScheduleInstance, []model.Issue, error) {
	var (
		instances []model.ScheduleInstance
		issues    []model.Issue
	)
	for i := range templates {
		tpl := &templates[i]
		seq, err := Expand(tpl, start, end)
		if err != nil {
			issues = append(issues, model.Issue{
				Category:          model.CategoryPattern,
				Severity:          model.SeverityCritical,
				Kind:              "invalid_template",
				Occurrences:       []string{tpl.ID},
				Description:       fmt.Sprintf("%s rejected: %v", tpl.Designator(), err),
				RecommendedAction: "Correct the operating-day pattern or effective range",
			})
			continue
		}
		for inst := range seq {
			if bt := inst.BlockTime(); bt <= 0 {
				issues = append(issues, model.Issue{
					Category:          model.CategoryPattern,
					Severity:          model.SeverityMedium,
					Kind:              "invalid_block_time",
					Occurrences:       []string{inst.ID()},
					Description:       fmt.Sprintf("%s computes block time %s; arrival must be after departure", inst.ID(), bt),
					RecommendedAction: "Correct arrival time or arrival day offset",
					Fields:            map[string]any{"block_minutes": int(bt.Minutes())},
				})
			}
			instances = append(instances, inst)
		}
	}
	return instances, issues, nil
}
