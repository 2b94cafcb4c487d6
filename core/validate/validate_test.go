package validate

import (
	"context"
	"testing"
	"time"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
)

func newTemplate(number, origin, dest string, dep, arr string) *model.FlightTemplate {
	return &model.FlightTemplate{
		ID:            "tpl-" + number,
		Carrier:       "DL",
		FlightNumber:  number,
		Origin:        origin,
		Destination:   dest,
		DepartureTime: model.MustTimeOfDay(dep),
		ArrivalTime:   model.MustTimeOfDay(arr),
		Days:          "1234567",
		EffectiveFrom: model.Date(2025, time.January, 1),
		EffectiveTo:   model.Date(2025, time.March, 31),
		AircraftType:  "320",
		Tail:          "N100",
		Seats:         180,
		CrewBase:      "ATL",
	}
}

func occurrence(tpl *model.FlightTemplate, date time.Time) model.ScheduleInstance {
	return model.ScheduleInstance{
		Template:  tpl,
		Date:      date,
		Departure: tpl.DepartureTime.On(date),
		Arrival:   tpl.ArrivalTime.On(date.AddDate(0, 0, tpl.ArrivalDayOffset)),
	}
}

func newProvider() *refdata.StaticProvider {
	ref := refdata.NewStaticProvider()
	ref.AddAirport(refdata.Airport{Code: "ATL", Country: "US", Lat: 33.64, Lon: -84.43})
	ref.AddAirport(refdata.Airport{Code: "JFK", Country: "US", Lat: 40.64, Lon: -73.78})
	ref.AddAirport(refdata.Airport{Code: "BOS", Country: "US", Lat: 42.36, Lon: -71.01})
	ref.AddAircraft(refdata.Aircraft{Tail: "N100", Type: "320", Status: refdata.AircraftActive, Seats: 180})
	ref.AddCrewBase(refdata.CrewBase{Base: "ATL", Pilots: 40, Cabin: 80})
	ref.AddRights(refdata.Rights{Carrier: "DL", Home: "US", Granted: true, Designated: true}, "US", "US")
	return ref
}

func kinds(issues []model.Issue) map[string]int {
	out := make(map[string]int)
	for _, is := range issues {
		out[is.Kind]++
	}
	return out
}

func findKind(t *testing.T, issues []model.Issue, kind string) model.Issue {
	t.Helper()
	for _, is := range issues {
		if is.Kind == kind {
			return is
		}
	}
	t.Fatalf("no %s issue in %+v", kind, issues)
	return model.Issue{}
}

func TestAircraftInsufficientTurnaround(t *testing.T) {
	out := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	back := newTemplate("205", "JFK", "ATL", "10:20", "12:20") // 20min on the ground
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(out, day), occurrence(back, day)}
	idx := index.Build(occs, 0)

	issues := AircraftValidator{}.Validate(context.Background(), occs, idx, newProvider())
	is := findKind(t, issues, "insufficient_turnaround")
	if is.Severity != model.SeverityHigh {
		t.Fatalf("severity = %s, want high", is.Severity)
	}
	if len(is.Occurrences) != 2 {
		t.Fatalf("occurrences = %v, want both legs", is.Occurrences)
	}
	if is.Resource != model.TailKey("N100") {
		t.Fatalf("resource = %s, want tail N100", is.Resource)
	}
	if got := is.Fields["turnaround_minutes"]; got != 20 {
		t.Fatalf("turnaround_minutes = %v, want 20", got)
	}
	if got := is.Fields["minimum_required"]; got != 45 {
		t.Fatalf("minimum_required = %v, want 45", got)
	}
}

func TestAircraftSufficientTurnaroundClean(t *testing.T) {
	out := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	back := newTemplate("205", "JFK", "ATL", "11:00", "13:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(out, day), occurrence(back, day)}
	idx := index.Build(occs, 0)

	issues := AircraftValidator{}.Validate(context.Background(), occs, idx, newProvider())
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestAircraftInactiveAndMaintenance(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	ref := newProvider()
	ref.AddAircraft(refdata.Aircraft{Tail: "N100", Type: "320", Status: refdata.AircraftStored})
	issues := AircraftValidator{}.Validate(context.Background(), occs, idx, ref)
	if is := findKind(t, issues, "aircraft_inactive"); is.Severity != model.SeverityCritical {
		t.Fatalf("aircraft_inactive severity = %s, want critical", is.Severity)
	}

	ref = newProvider()
	ref.AddAircraft(refdata.Aircraft{
		Tail: "N100", Type: "320", Status: refdata.AircraftActive,
		Maintenance: []refdata.MaintenanceWindow{{
			Start: day.Add(9 * time.Hour), End: day.Add(20 * time.Hour), Kind: "A-check",
		}},
	})
	issues = AircraftValidator{}.Validate(context.Background(), occs, idx, ref)
	findKind(t, issues, "maintenance_conflict")
}

func TestAircraftTypeMismatch(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	tpl.AircraftType = "773"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	issues := AircraftValidator{}.Validate(context.Background(), occs, idx, newProvider())
	if is := findKind(t, issues, "aircraft_type_mismatch"); is.Severity != model.SeverityHigh {
		t.Fatalf("type mismatch severity = %s, want high", is.Severity)
	}
}

func TestSlotValidator(t *testing.T) {
	tpl := newTemplate("204", "JFK", "ATL", "08:00", "10:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	ref := newProvider()
	ref.AddAirport(refdata.Airport{Code: "JFK", Country: "US", Coordinated: true})
	issues := SlotValidator{}.Validate(context.Background(), occs, idx, ref)
	if is := findKind(t, issues, "missing_slot"); is.Severity != model.SeverityCritical {
		t.Fatalf("missing_slot severity = %s, want critical", is.Severity)
	}

	ref.AddSlot(refdata.Slot{
		Airport: "JFK", Movement: index.MovementDeparture, Flight: "DL204",
		Time: model.MustTimeOfDay("08:30"), Confirmed: true,
		ToleranceBefore: 5 * time.Minute, ToleranceAfter: 5 * time.Minute,
	})
	issues = SlotValidator{}.Validate(context.Background(), occs, idx, ref)
	is := findKind(t, issues, "slot_time_mismatch")
	if is.Severity != model.SeverityHigh {
		t.Fatalf("slot_time_mismatch severity = %s, want high", is.Severity)
	}
	if got := is.Fields["offset_minutes"]; got != -30 {
		t.Fatalf("offset_minutes = %v, want -30", got)
	}

	ref.AddSlot(refdata.Slot{
		Airport: "JFK", Movement: index.MovementDeparture, Flight: "DL204",
		Time: model.MustTimeOfDay("08:00"), Confirmed: false,
		ToleranceBefore: 5 * time.Minute, ToleranceAfter: 5 * time.Minute,
	})
	issues = SlotValidator{}.Validate(context.Background(), occs, idx, ref)
	if is := findKind(t, issues, "slot_not_confirmed"); is.Severity != model.SeverityMedium {
		t.Fatalf("slot_not_confirmed severity = %s, want medium", is.Severity)
	}
}

func TestSlotNonCoordinatedAirportSkipped(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	issues := SlotValidator{}.Validate(context.Background(), occs, idx, newProvider())
	if len(issues) != 0 {
		t.Fatalf("expected no issues at non-coordinated airports, got %+v", issues)
	}
}

func TestCrewInsufficientComplement(t *testing.T) {
	day := model.Date(2025, time.January, 6)
	a := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	b := newTemplate("206", "ATL", "BOS", "08:30", "10:30")
	b.Tail = "N101"
	occs := []model.ScheduleInstance{occurrence(a, day), occurrence(b, day)}
	idx := index.Build(occs, 0)

	ref := newProvider()
	ref.AddCrewBase(refdata.CrewBase{Base: "ATL", Pilots: 3, Cabin: 4}) // peak needs 4/6
	issues := CrewValidator{}.Validate(context.Background(), occs, idx, ref)
	is := findKind(t, issues, "insufficient_crew")
	if is.Severity != model.SeverityCritical {
		t.Fatalf("severity = %s, want critical", is.Severity)
	}
	if len(is.Occurrences) != 2 {
		t.Fatalf("occurrences = %v, want both flights", is.Occurrences)
	}
}

func TestCrewDutyPeriodExceeded(t *testing.T) {
	day := model.Date(2025, time.January, 6)
	var occs []model.ScheduleInstance
	// Three sectors spanning 06:00 to 20:00, above the 12h30 limit.
	for _, leg := range []struct{ num, o, d, dep, arr string }{
		{"204", "ATL", "JFK", "06:00", "08:00"},
		{"205", "JFK", "ATL", "11:00", "13:00"},
		{"206", "ATL", "BOS", "18:00", "20:00"},
	} {
		occs = append(occs, occurrence(newTemplate(leg.num, leg.o, leg.d, leg.dep, leg.arr), day))
	}
	idx := index.Build(occs, 0)

	issues := CrewValidator{}.Validate(context.Background(), occs, idx, newProvider())
	is := findKind(t, issues, "fdp_exceeded")
	if got := is.Fields["sectors"]; got != 3 {
		t.Fatalf("sectors = %v, want 3", got)
	}
}

func TestCrewInsufficientRest(t *testing.T) {
	late := newTemplate("204", "ATL", "JFK", "20:00", "22:00")
	early := newTemplate("205", "ATL", "BOS", "05:00", "07:00") // 7h after previous arrival
	mon := model.Date(2025, time.January, 6)
	tue := model.Date(2025, time.January, 7)
	occs := []model.ScheduleInstance{occurrence(late, mon), occurrence(early, tue)}
	idx := index.Build(occs, 0)

	issues := CrewValidator{}.Validate(context.Background(), occs, idx, newProvider())
	is := findKind(t, issues, "insufficient_rest")
	if got := is.Fields["rest_hours"]; got != 7.0 {
		t.Fatalf("rest_hours = %v, want 7", got)
	}
}

func TestCrewMonthlyHoursExceeded(t *testing.T) {
	// One 4h sector daily for 31 days is 124 block hours in January.
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "12:00")
	var occs []model.ScheduleInstance
	for d := model.Date(2025, time.January, 1); d.Month() == time.January; d = d.AddDate(0, 0, 1) {
		occs = append(occs, occurrence(tpl, d))
	}
	idx := index.Build(occs, 0)

	issues := CrewValidator{}.Validate(context.Background(), occs, idx, newProvider())
	// The duty chain also trips rest checks; the block-hour cap must be
	// among the findings regardless.
	findKind(t, issues, "monthly_hours_exceeded")
}

func TestMCTBelowMinimum(t *testing.T) {
	inbound := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	outbound := newTemplate("206", "JFK", "BOS", "10:30", "11:30") // 30min, below 45
	outbound.Tail = "N101"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(inbound, day), occurrence(outbound, day)}
	idx := index.Build(occs, 0)

	issues := MCTValidator{}.Validate(context.Background(), occs, idx, newProvider())
	is := findKind(t, issues, "below_mct")
	if is.Severity != model.SeverityHigh {
		t.Fatalf("severity = %s, want high", is.Severity)
	}
	if got := is.Fields["required_minutes"]; got != 45 {
		t.Fatalf("required_minutes = %v, want 45 for domestic-domestic", got)
	}
}

func TestMCTInterlineAddOn(t *testing.T) {
	inbound := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	outbound := newTemplate("206", "JFK", "BOS", "10:50", "11:50")
	outbound.Carrier = "B6"
	outbound.Tail = "N101"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(inbound, day), occurrence(outbound, day)}
	idx := index.Build(occs, 0)

	// 50min gap beats the 45min base but not base plus the interline
	// add-on.
	issues := MCTValidator{}.Validate(context.Background(), occs, idx, newProvider())
	is := findKind(t, issues, "below_mct")
	if got := is.Fields["required_minutes"]; got != 60 {
		t.Fatalf("required_minutes = %v, want 60 with interline add-on", got)
	}
	if got := is.Fields["interline"]; got != true {
		t.Fatalf("interline = %v, want true", got)
	}
}

func TestMCTTerminalChangeAddOn(t *testing.T) {
	inbound := newTemplate("204", "LHR", "JFK", "06:00", "10:00")
	outbound := newTemplate("206", "JFK", "BOS", "11:40", "12:40")
	outbound.Tail = "N101"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(inbound, day), occurrence(outbound, day)}
	idx := index.Build(occs, 0)

	// 100min gap beats the 90min international-domestic base but not
	// base plus the terminal-change add-on.
	ref := newProvider()
	ref.AddAirport(refdata.Airport{Code: "LHR", Country: "GB", Lat: 51.47, Lon: -0.45})
	issues := MCTValidator{}.Validate(context.Background(), occs, idx, ref)
	is := findKind(t, issues, "below_mct")
	if got := is.Fields["required_minutes"]; got != 110 {
		t.Fatalf("required_minutes = %v, want 110 with terminal-change add-on", got)
	}
	if got := is.Fields["interline"]; got != false {
		t.Fatalf("interline = %v, want false for a same-carrier connection", got)
	}
}

func TestMCTIgnoresGapsOutsideConnectionWindow(t *testing.T) {
	inbound := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	outbound := newTemplate("206", "JFK", "BOS", "17:00", "18:00") // 7h, no connection
	outbound.Tail = "N101"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(inbound, day), occurrence(outbound, day)}
	idx := index.Build(occs, 0)

	issues := MCTValidator{}.Validate(context.Background(), occs, idx, newProvider())
	if len(issues) != 0 {
		t.Fatalf("expected no issues beyond the connection window, got %+v", issues)
	}
}

func TestCurfewViolationAndExemption(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "21:30", "23:30")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	ref := newProvider()
	ref.AddAirport(refdata.Airport{
		Code: "JFK", Country: "US",
		Curfews: []refdata.Curfew{{
			Start: model.MustTimeOfDay("23:00"), End: model.MustTimeOfDay("06:00"), Strict: true,
		}},
	})
	issues := CurfewValidator{}.Validate(context.Background(), occs, idx, ref)
	if is := findKind(t, issues, "curfew_violation"); is.Severity != model.SeverityCritical {
		t.Fatalf("severity = %s, want critical", is.Severity)
	}

	ref.AddAirport(refdata.Airport{
		Code: "JFK", Country: "US",
		Curfews: []refdata.Curfew{{
			Start: model.MustTimeOfDay("23:00"), End: model.MustTimeOfDay("06:00"),
			Exemptions: []string{"DL"},
		}},
	})
	issues = CurfewValidator{}.Validate(context.Background(), occs, idx, ref)
	if is := findKind(t, issues, "curfew_exemption_used"); is.Severity != model.SeverityInfo {
		t.Fatalf("exemption severity = %s, want info", is.Severity)
	}
}

func TestCurfewWrapsAroundMidnight(t *testing.T) {
	early := newTemplate("204", "ATL", "JFK", "03:00", "05:00") // arrival inside 23:00-06:00
	midday := newTemplate("206", "ATL", "JFK", "10:00", "12:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(early, day), occurrence(midday, day)}
	idx := index.Build(occs, 0)

	ref := newProvider()
	ref.AddAirport(refdata.Airport{
		Code: "JFK", Country: "US",
		Curfews: []refdata.Curfew{{
			Start: model.MustTimeOfDay("23:00"), End: model.MustTimeOfDay("06:00"),
		}},
	})
	issues := CurfewValidator{}.Validate(context.Background(), occs, idx, ref)
	if got := kinds(issues)["curfew_violation"]; got != 1 {
		t.Fatalf("curfew_violation count = %d, want only the 05:00 arrival flagged", got)
	}
}

func TestRegulatoryCabotage(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	tpl.Carrier = "BA"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}

	ref := newProvider()
	ref.AddRights(refdata.Rights{Carrier: "BA", Home: "GB", Granted: true, Designated: true}, "US", "US")
	issues := RegulatoryValidator{}.Validate(context.Background(), occs, nil, ref)
	if is := findKind(t, issues, "cabotage_violation"); is.Severity != model.SeverityCritical {
		t.Fatalf("severity = %s, want critical", is.Severity)
	}
}

func TestRegulatoryMissingRightsAndFrequencyCap(t *testing.T) {
	tpl := newTemplate("204", "ATL", "LHR", "18:00", "06:00")
	tpl.ArrivalDayOffset = 1
	tpl.AircraftType = "773"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}

	ref := newProvider()
	ref.AddAirport(refdata.Airport{Code: "LHR", Country: "GB"})
	ref.AddRights(refdata.Rights{Carrier: "DL", Home: "US", Granted: false}, "US", "GB")
	issues := RegulatoryValidator{}.Validate(context.Background(), occs, nil, ref)
	findKind(t, issues, "missing_traffic_rights")

	ref.AddRights(refdata.Rights{Carrier: "DL", Home: "US", Granted: true, Designated: true, WeeklyCap: 5}, "US", "GB")
	issues = RegulatoryValidator{}.Validate(context.Background(), occs, nil, ref)
	is := findKind(t, issues, "frequency_cap_exceeded")
	if got := is.Fields["weekly_frequency"]; got != 7 {
		t.Fatalf("weekly_frequency = %v, want 7", got)
	}
}

func TestRegulatoryOpenSkiesNeedsNoBilateral(t *testing.T) {
	tpl := newTemplate("204", "CDG", "FRA", "08:00", "09:30")
	tpl.Carrier = "AF"
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}

	ref := newProvider()
	ref.AddAirport(refdata.Airport{Code: "CDG", Country: "FR"})
	ref.AddAirport(refdata.Airport{Code: "FRA", Country: "DE"})
	ref.AddRights(refdata.Rights{Carrier: "AF", Home: "FR", Granted: false}, "FR", "DE")
	issues := RegulatoryValidator{}.Validate(context.Background(), occs, nil, ref)
	if len(issues) != 0 {
		t.Fatalf("expected no issues inside the open-skies area, got %+v", issues)
	}
}

func TestRoutingDiscontinuity(t *testing.T) {
	first := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	second := newTemplate("206", "BOS", "ATL", "12:00", "14:00") // tail left at JFK
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(first, day), occurrence(second, day)}
	idx := index.Build(occs, 0)

	issues := RoutingValidator{}.Validate(context.Background(), occs, idx, newProvider())
	is := findKind(t, issues, "routing_discontinuity")
	if is.Severity != model.SeverityCritical {
		t.Fatalf("severity = %s, want critical", is.Severity)
	}
	if len(is.Occurrences) != 2 {
		t.Fatalf("occurrences = %v, want both legs", is.Occurrences)
	}
}

func TestRoutingRangeExceeded(t *testing.T) {
	tpl := newTemplate("204", "JFK", "NRT", "10:00", "14:00")
	tpl.ArrivalDayOffset = 1
	tpl.AircraftType = "E90" // 2300nm against a ~5850nm sector
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	ref := newProvider()
	ref.AddAirport(refdata.Airport{Code: "NRT", Country: "JP", Lat: 35.77, Lon: 140.39})
	issues := RoutingValidator{}.Validate(context.Background(), occs, idx, ref)
	findKind(t, issues, "range_exceeded")
}

func TestPatternFrequencyMismatch(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	tpl.Days = "123456X"
	tpl.FrequencyPerWeek = 7
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}

	issues := PatternValidator{}.Validate(context.Background(), occs, nil, nil)
	is := findKind(t, issues, "frequency_mismatch")
	if is.Severity != model.SeverityMedium {
		t.Fatalf("severity = %s, want medium", is.Severity)
	}
	if got := is.Fields["actual"]; got != 6 {
		t.Fatalf("actual = %v, want 6", got)
	}
}

func TestPatternEquipmentOverlap(t *testing.T) {
	winter := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	summer := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	summer.ID = "tpl-204-summer"
	summer.AircraftType = "321"
	summer.EffectiveFrom = model.Date(2025, time.March, 1) // overlaps March
	summer.EffectiveTo = model.Date(2025, time.October, 25)
	occs := []model.ScheduleInstance{
		occurrence(winter, model.Date(2025, time.January, 6)),
		occurrence(summer, model.Date(2025, time.March, 3)),
	}

	issues := PatternValidator{}.Validate(context.Background(), occs, nil, nil)
	findKind(t, issues, "equipment_overlap")
}

func TestDegradedOnMissingReferenceData(t *testing.T) {
	tpl := newTemplate("204", "ATL", "JFK", "08:00", "10:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(tpl, day)}
	idx := index.Build(occs, 0)

	empty := refdata.NewStaticProvider()
	for _, v := range []Validator{SlotValidator{}, AircraftValidator{}, CrewValidator{}, CurfewValidator{}, RegulatoryValidator{}, RoutingValidator{}} {
		issues := v.Validate(context.Background(), occs, idx, empty)
		if len(issues) == 0 {
			t.Fatalf("%s: expected degraded issues on empty reference data", v.Category())
		}
		for _, is := range issues {
			if is.Kind != "reference_data_unavailable" {
				t.Fatalf("%s: kind = %s, want reference_data_unavailable", v.Category(), is.Kind)
			}
			if is.Severity != model.SeverityInfo {
				t.Fatalf("%s: severity = %s, want info", v.Category(), is.Severity)
			}
		}
	}
}

func TestAllReturnsEveryCategoryOnce(t *testing.T) {
	seen := make(map[model.Category]bool)
	for _, v := range All() {
		if seen[v.Category()] {
			t.Fatalf("category %s appears twice", v.Category())
		}
		seen[v.Category()] = true
	}
	if len(seen) != len(model.Categories()) {
		t.Fatalf("validator set covers %d categories, want %d", len(seen), len(model.Categories()))
	}
}
