package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

func TestCurfewCovers(t *testing.T) {
	wrap := Curfew{Start: model.MustTimeOfDay("23:00"), End: model.MustTimeOfDay("06:00")}
	cases := []struct {
		at   string
		want bool
	}{
		{"23:00", true},
		{"23:30", true},
		{"00:15", true},
		{"05:59", true},
		{"06:00", false},
		{"12:00", false},
		{"22:59", false},
	}
	for _, c := range cases {
		if got := wrap.Covers(model.MustTimeOfDay(c.at)); got != c.want {
			t.Errorf("23:00-06:00 covers %s = %v, want %v", c.at, got, c.want)
		}
	}

	plain := Curfew{Start: model.MustTimeOfDay("01:00"), End: model.MustTimeOfDay("05:00")}
	if !plain.Covers(model.MustTimeOfDay("03:00")) || plain.Covers(model.MustTimeOfDay("06:00")) {
		t.Error("non-wrapping window misbehaves")
	}
}

func TestStaticProviderUnavailable(t *testing.T) {
	p := NewStaticProvider()
	_, err := p.Aircraft(context.Background(), "N999")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMCTFallback(t *testing.T) {
	p := NewStaticProvider()
	p.AddMCT("JFK", ConnDomInt, 80*time.Minute)

	got, err := p.MCT(context.Background(), "JFK", ConnDomInt)
	if err != nil || got != 80*time.Minute {
		t.Fatalf("airport entry = %v, %v", got, err)
	}
	got, err = p.MCT(context.Background(), "BOS", ConnIntDom)
	if err != nil || got != 90*time.Minute {
		t.Fatalf("default = %v, %v; want 90m", got, err)
	}
}

func TestTables(t *testing.T) {
	if MinTurnaround("320") != 45*time.Minute {
		t.Error("narrow-body turnaround must be 45m")
	}
	if MinTurnaround("773") != 90*time.Minute {
		t.Error("wide-body turnaround must be 90m")
	}
	if MinTurnaround("CR9") != 30*time.Minute {
		t.Error("regional turnaround must be 30m")
	}
	if FDPLimit(2) != 13*time.Hour || FDPLimit(9) != 10*time.Hour {
		t.Error("FDP table endpoints wrong")
	}
	if p, c := CrewComplement(WideBody); p != 2 || c != 6 {
		t.Errorf("wide-body complement = %d/%d", p, c)
	}
}

func TestGreatCircleNM(t *testing.T) {
	jfk := Airport{Code: "JFK", Lat: 40.6413, Lon: -73.7781}
	lhr := Airport{Code: "LHR", Lat: 51.4700, Lon: -0.4543}
	d := GreatCircleNM(jfk, lhr)
	if d < 2900 || d > 3100 {
		t.Fatalf("JFK-LHR = %.0fnm, want ~3000", d)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refdata.yaml")
	data := `airports:
  - code: LHR
    country: GB
    lat: 51.47
    lon: -0.4543
    coordinated: true
    curfews:
      - start: "23:00"
        end: "06:00"
        strict: true
slots:
  - airport: LHR
    movement: dep
    flight: DL204
    time: "10:00"
    confirmed: true
fleet:
  - tail: N100
    type: "320"
    status: active
    seats: 180
crew_bases:
  - base: JFK
    pilots: 40
    cabin: 120
rights:
  - carrier: DL
    home: US
    origin: US
    dest: GB
    granted: true
    designated: true
mct:
  - airport: LHR
    connection: international_international
    minutes: 75
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p := NewStaticProvider()
	if err := p.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()

	ap, err := p.Airport(ctx, "LHR")
	if err != nil || !ap.Coordinated || len(ap.Curfews) != 1 {
		t.Fatalf("airport = %+v, %v", ap, err)
	}
	slot, err := p.Slot(ctx, "LHR", "dep", "DL204", time.Time{})
	if err != nil || !slot.Confirmed || slot.ToleranceAfter != 5*time.Minute {
		t.Fatalf("slot = %+v, %v", slot, err)
	}
	if d, _ := p.MCT(ctx, "LHR", ConnIntInt); d != 75*time.Minute {
		t.Fatalf("mct = %v, want 75m", d)
	}
	if _, err := p.Rights(ctx, "DL", "US", "GB"); err != nil {
		t.Fatalf("rights: %v", err)
	}
}
