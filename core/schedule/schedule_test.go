package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

func tpl(id, number string) model.FlightTemplate {
	return model.FlightTemplate{
		ID: id, Carrier: "DL", FlightNumber: number,
		Origin: "JFK", Destination: "BOS",
		DepartureTime: model.MustTimeOfDay("10:00"),
		ArrivalTime:   model.MustTimeOfDay("11:00"),
		Days:          "1234567",
		EffectiveFrom: model.Date(2025, time.January, 1),
		EffectiveTo:   model.Date(2025, time.March, 31),
		AircraftType:  "320",
	}
}

func TestStoreApply(t *testing.T) {
	st := NewStore()
	st.Put(&Schedule{ID: "s1", Airline: "DL", Season: "S25"})

	v, err := st.Apply("s1", []Change{
		{Action: ActionCreate, Template: tpl("t1", "204"), SourceAction: "ssm-1"},
		{Action: ActionCreate, Template: tpl("t2", "205"), SourceAction: "ssm-1"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if v != 1 {
		t.Fatalf("version = %d, want 1", v)
	}

	mod := tpl("t1", "204")
	mod.Tail = "N100"
	v, err = st.Apply("s1", []Change{
		{Action: ActionModify, Template: mod, SourceAction: "ssm-2"},
		{Action: ActionCancel, Template: tpl("t2", "205"), SourceAction: "ssm-2"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if v != 2 {
		t.Fatalf("version = %d, want 2", v)
	}

	s, ok := st.Get("s1")
	if !ok {
		t.Fatal("schedule missing")
	}
	if len(s.Templates) != 1 || s.Templates[0].Tail != "N100" {
		t.Fatalf("unexpected templates: %+v", s.Templates)
	}
}

func TestStoreApplyRejectsInvalidTemplate(t *testing.T) {
	st := NewStore()
	st.Put(&Schedule{ID: "s1"})

	bad := tpl("t1", "204")
	bad.Days = "123"
	_, err := st.Apply("s1", []Change{{Action: ActionCreate, Template: bad, SourceAction: "ssm-3"}})
	if !errors.Is(err, model.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
	s, _ := st.Get("s1")
	if len(s.Templates) != 0 {
		t.Fatal("rejected change-set must not mutate the schedule")
	}
}

func TestStoreGetSnapshot(t *testing.T) {
	st := NewStore()
	st.Put(&Schedule{ID: "s1", Templates: []model.FlightTemplate{tpl("t1", "204")}})

	snap, _ := st.Get("s1")
	if _, err := st.Apply("s1", []Change{{Action: ActionCancel, Template: tpl("t1", "204")}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(snap.Templates) != 1 {
		t.Fatal("snapshot must not observe later mutations")
	}
}
