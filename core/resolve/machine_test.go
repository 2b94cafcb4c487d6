package resolve

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/flightworks/schedpipe/core/detect"
	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
	"github.com/flightworks/schedpipe/core/validate"
	infralog "github.com/flightworks/schedpipe/infra/logger"
)

func newTemplate(number, origin, dest, dep, arr string) *model.FlightTemplate {
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
	ref.AddAircraft(refdata.Aircraft{Tail: "N101", Type: "320", Status: refdata.AircraftActive, Seats: 180})
	return ref
}

// overlapSetup builds two overlapping legs on tail N100 and returns the
// machine plus its single detected conflict.
func overlapSetup(t *testing.T, maxAttempts int) (*Machine, *model.Conflict) {
	t.Helper()
	a := newTemplate("204", "ATL", "JFK", "10:00", "12:00")
	b := newTemplate("206", "ATL", "BOS", "11:00", "13:00")
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(a, day), occurrence(b, day)}

	m := NewMachine(occs, 0, newProvider(), maxAttempts, infralog.NopLogger{})
	conflicts := detect.Detect(nil, m.Index())
	if len(conflicts) != 1 {
		t.Fatalf("setup: conflicts = %d, want 1", len(conflicts))
	}
	m.Register(conflicts)
	return m, &conflicts[0]
}

func solutionOfKind(t *testing.T, c *model.Conflict, kind model.SolutionKind) *model.Solution {
	t.Helper()
	for i := range c.Solutions {
		if c.Solutions[i].Kind == kind {
			return &c.Solutions[i]
		}
	}
	t.Fatalf("conflict has no %s solution", kind)
	return nil
}

func TestResolveViaTailReassignment(t *testing.T) {
	m, c := overlapSetup(t, 0)

	if err := m.Begin(c, "ops-controller"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if c.Status != model.StatusInProgress || c.Assignee != "ops-controller" {
		t.Fatalf("after begin: status %s assignee %q", c.Status, c.Assignee)
	}

	sol := solutionOfKind(t, c, model.SolutionReassignTail)
	sol.NewTail = "N101"
	fresh, err := m.Apply(context.Background(), c, sol.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Status != model.StatusResolved {
		t.Fatalf("status = %s, want resolved", c.Status)
	}
	if len(fresh) != 0 {
		t.Fatalf("reassignment introduced conflicts: %+v", fresh)
	}
	if _, ok := c.AppliedSolution(); !ok {
		t.Fatal("no solution marked applied")
	}
	if len(m.Index().ByTail("N101")) != 1 || len(m.Index().ByTail("N100")) != 1 {
		t.Fatalf("index not rebalanced: N100=%d N101=%d",
			len(m.Index().ByTail("N100")), len(m.Index().ByTail("N101")))
	}
	if len(m.Journal()) != 1 {
		t.Fatalf("journal = %d entries, want 1", len(m.Journal()))
	}
	if len(c.History) != 2 {
		t.Fatalf("history = %d transitions, want begin and resolve", len(c.History))
	}
}

func TestIneffectiveSolutionRevertsAndExhausts(t *testing.T) {
	m, c := overlapSetup(t, 2)
	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	before := m.Index().Snapshot()

	sol := solutionOfKind(t, c, model.SolutionRetime)
	sol.Shift = 5 * time.Minute // still overlapping afterwards

	_, err := m.Apply(context.Background(), c, sol.ID)
	if !errors.Is(err, ErrIneffectiveSolution) {
		t.Fatalf("first attempt err = %v, want ErrIneffectiveSolution", err)
	}
	if !reflect.DeepEqual(before, m.Index().Snapshot()) {
		t.Fatal("ineffective fix not reverted")
	}
	if c.Status != model.StatusInProgress {
		t.Fatalf("status = %s, want still in_progress", c.Status)
	}

	_, err = m.Apply(context.Background(), c, sol.ID)
	if !errors.Is(err, ErrResolutionExhausted) {
		t.Fatalf("second attempt err = %v, want ErrResolutionExhausted", err)
	}
	if c.Status != model.StatusCannotResolve {
		t.Fatalf("status = %s, want cannot_resolve", c.Status)
	}
}

func TestEffectiveRetimeMayIntroduceFreshConflict(t *testing.T) {
	m, c := overlapSetup(t, 0)
	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	// Pushing the second leg clear of the overlap exposes that it now
	// departs ATL while the tail sits at JFK.
	sol := solutionOfKind(t, c, model.SolutionRetime)
	sol.Shift = 90 * time.Minute
	fresh, err := m.Apply(context.Background(), c, sol.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Status != model.StatusResolved {
		t.Fatalf("status = %s, want resolved", c.Status)
	}
	if len(fresh) != 1 || fresh[0].Type != model.RoutingMismatch {
		t.Fatalf("fresh = %+v, want one routing_mismatch", fresh)
	}
	if fresh[0].Status != model.StatusPending {
		t.Fatalf("fresh conflict status = %s, want pending", fresh[0].Status)
	}
}

func TestRollbackRestoresIndexExactly(t *testing.T) {
	m, c := overlapSetup(t, 0)
	before := m.Index().Snapshot()

	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	sol := solutionOfKind(t, c, model.SolutionReassignTail)
	sol.NewTail = "N101"
	if _, err := m.Apply(context.Background(), c, sol.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if reflect.DeepEqual(before, m.Index().Snapshot()) {
		t.Fatal("apply changed nothing")
	}

	m.Rollback()
	if !reflect.DeepEqual(before, m.Index().Snapshot()) {
		t.Fatal("rollback did not restore the pre-run index")
	}
	if len(m.Journal()) != 0 {
		t.Fatal("journal not cleared after rollback")
	}
}

func TestAcceptExceptionRequiresJustification(t *testing.T) {
	m, c := overlapSetup(t, 0)
	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.AcceptException(c, ""); err == nil {
		t.Fatal("expected error without justification")
	}
	if err := m.AcceptException(c, "one-off charter, coordinator approved"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if c.Status != model.StatusAcceptedAsException {
		t.Fatalf("status = %s, want accepted_as_exception", c.Status)
	}
	if !c.Status.Settled() {
		t.Fatal("exception must count as settled")
	}
}

func TestTerminalConflictNeverTransitions(t *testing.T) {
	m, c := overlapSetup(t, 0)
	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Escalate(c, "needs network planning sign-off"); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if err := m.Begin(c, "ops"); !errors.Is(err, model.ErrInvariantViolation) {
		t.Fatalf("begin on terminal = %v, want ErrInvariantViolation", err)
	}
	if _, err := m.Apply(context.Background(), c, "x"); !errors.Is(err, model.ErrInvariantViolation) {
		t.Fatalf("apply on terminal = %v, want ErrInvariantViolation", err)
	}
	if err := m.CannotResolve(c, "x"); !errors.Is(err, model.ErrInvariantViolation) {
		t.Fatalf("cannot_resolve on terminal = %v, want ErrInvariantViolation", err)
	}
}

func TestCancelOccurrenceRemovesLeg(t *testing.T) {
	a := newTemplate("204", "ATL", "JFK", "10:00", "11:00")
	b := newTemplate("205", "JFK", "ATL", "11:20", "12:20") // 20min turnaround
	day := model.Date(2025, time.January, 6)
	occs := []model.ScheduleInstance{occurrence(a, day), occurrence(b, day)}
	m := NewMachine(occs, index.DefaultBucketTolerance, newProvider(), 0, infralog.NopLogger{})

	conflicts := detect.Detect(issuesFor(t, m), m.Index())
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(conflicts))
	}
	c := &conflicts[0]
	m.Register(conflicts)
	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	c.Solutions = append(c.Solutions, model.Solution{ID: c.ID + "-cancel", Kind: model.SolutionCancelOccurrence})
	if _, err := m.Apply(context.Background(), c, c.ID+"-cancel"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(m.Occurrences()) != 1 {
		t.Fatalf("occurrences = %d, want 1 after cancellation", len(m.Occurrences()))
	}
	if c.Status != model.StatusResolved {
		t.Fatalf("status = %s, want resolved", c.Status)
	}
}

func TestApplyRejectsWaiveAsMutation(t *testing.T) {
	m, c := overlapSetup(t, 3)
	if err := m.Begin(c, "ops"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	c.Solutions = append(c.Solutions, model.Solution{ID: c.ID + "-waive", Kind: model.SolutionWaive})
	if _, err := m.Apply(context.Background(), c, c.ID+"-waive"); err == nil {
		t.Fatal("waiver went through as a schedule mutation")
	}
	if c.Status != model.StatusInProgress {
		t.Fatalf("status = %s, want in_progress after rejected waiver", c.Status)
	}

	// The operator path still works: an exception with a justification.
	if err := m.AcceptException(c, "night shift approved a one-off double booking"); err != nil {
		t.Fatalf("accept exception: %v", err)
	}
	if c.Status != model.StatusAcceptedAsException {
		t.Fatalf("status = %s, want accepted_as_exception", c.Status)
	}
}

// issuesFor runs the aircraft validator so turnaround findings reach
// detection the same way the pipeline feeds them.
func issuesFor(t *testing.T, m *Machine) []model.Issue {
	t.Helper()
	return validate.AircraftValidator{}.Validate(context.Background(), m.Occurrences(), m.Index(), newProvider())
}
