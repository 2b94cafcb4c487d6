package refdata

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flightworks/schedpipe/core/model"
)

// StaticProvider serves reference data from in-memory tables, loaded
// from a YAML fixture or built in code. It is the default collaborator
// for offline validation and for tests.
type StaticProvider struct {
	airports map[string]Airport
	slots    map[string]Slot
	fleet    map[string]Aircraft
	bases    map[string]CrewBase
	rights   map[string]Rights
	mct      map[string]time.Duration
}

// NewStaticProvider creates an empty provider; use the Add helpers or
// LoadFile to populate it.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		airports: make(map[string]Airport),
		slots:    make(map[string]Slot),
		fleet:    make(map[string]Aircraft),
		bases:    make(map[string]CrewBase),
		rights:   make(map[string]Rights),
		mct:      make(map[string]time.Duration),
	}
}

func (p *StaticProvider) AddAirport(a Airport)   { p.airports[a.Code] = a }
func (p *StaticProvider) AddAircraft(a Aircraft) { p.fleet[a.Tail] = a }
func (p *StaticProvider) AddCrewBase(b CrewBase) { p.bases[b.Base] = b }

func (p *StaticProvider) AddSlot(s Slot) {
	p.slots[slotKey(s.Airport, s.Movement, s.Flight)] = s
}

func (p *StaticProvider) AddRights(r Rights, originCountry, destCountry string) {
	p.rights[rightsKey(r.Carrier, originCountry, destCountry)] = r
}

func (p *StaticProvider) AddMCT(airport, connection string, d time.Duration) {
	p.mct[airport+":"+connection] = d
}

func slotKey(airport, movement, flight string) string {
	return airport + ":" + movement + ":" + flight
}

func rightsKey(carrier, origin, dest string) string {
	return carrier + ":" + origin + ":" + dest
}

// Airport implements Provider.
func (p *StaticProvider) Airport(_ context.Context, code string) (Airport, error) {
	a, ok := p.airports[code]
	if !ok {
		return Airport{}, fmt.Errorf("airport %s: %w", code, ErrUnavailable)
	}
	return a, nil
}

// Slot implements Provider. Slots are keyed per flight and movement;
// the date parameter is accepted for interface symmetry with live
// coordinators that allocate per-date slots.
func (p *StaticProvider) Slot(_ context.Context, airport, movement, flight string, _ time.Time) (Slot, error) {
	s, ok := p.slots[slotKey(airport, movement, flight)]
	if !ok {
		return Slot{}, fmt.Errorf("slot %s/%s %s: %w", airport, movement, flight, ErrUnavailable)
	}
	return s, nil
}

// Aircraft implements Provider.
func (p *StaticProvider) Aircraft(_ context.Context, tail string) (Aircraft, error) {
	a, ok := p.fleet[tail]
	if !ok {
		return Aircraft{}, fmt.Errorf("aircraft %s: %w", tail, ErrUnavailable)
	}
	return a, nil
}

// CrewBase implements Provider.
func (p *StaticProvider) CrewBase(_ context.Context, base string) (CrewBase, error) {
	b, ok := p.bases[base]
	if !ok {
		return CrewBase{}, fmt.Errorf("crew base %s: %w", base, ErrUnavailable)
	}
	return b, nil
}

// Rights implements Provider.
func (p *StaticProvider) Rights(_ context.Context, carrier, originCountry, destCountry string) (Rights, error) {
	r, ok := p.rights[rightsKey(carrier, originCountry, destCountry)]
	if !ok {
		return Rights{}, fmt.Errorf("rights %s %s-%s: %w", carrier, originCountry, destCountry, ErrUnavailable)
	}
	return r, nil
}

// MCT implements Provider, falling back to the default table when the
// airport has no specific entry.
func (p *StaticProvider) MCT(_ context.Context, airport, connection string) (time.Duration, error) {
	if d, ok := p.mct[airport+":"+connection]; ok {
		return d, nil
	}
	return DefaultMCT(connection), nil
}

// GreatCircleNM computes the great-circle distance between two airports
// in nautical miles.
func GreatCircleNM(a, b Airport) float64 {
	const earthRadiusNM = 3440.065
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusNM * math.Asin(math.Sqrt(h))
}

// fixture mirrors the YAML layout of a reference-data file.
type fixture struct {
	Airports []struct {
		Code        string  `yaml:"code"`
		Country     string  `yaml:"country"`
		Lat         float64 `yaml:"lat"`
		Lon         float64 `yaml:"lon"`
		Coordinated bool    `yaml:"coordinated"`
		Curfews     []struct {
			Start      string   `yaml:"start"`
			End        string   `yaml:"end"`
			Strict     bool     `yaml:"strict"`
			Exemptions []string `yaml:"exemptions"`
		} `yaml:"curfews"`
	} `yaml:"airports"`
	Slots []struct {
		Airport   string `yaml:"airport"`
		Movement  string `yaml:"movement"`
		Flight    string `yaml:"flight"`
		Time      string `yaml:"time"`
		Confirmed bool   `yaml:"confirmed"`
		Tolerance int    `yaml:"tolerance_minutes"`
	} `yaml:"slots"`
	Fleet []struct {
		Tail        string `yaml:"tail"`
		Type        string `yaml:"type"`
		Status      string `yaml:"status"`
		Seats       int    `yaml:"seats"`
		Maintenance []struct {
			Start time.Time `yaml:"start"`
			End   time.Time `yaml:"end"`
			Kind  string    `yaml:"kind"`
		} `yaml:"maintenance"`
	} `yaml:"fleet"`
	CrewBases []struct {
		Base   string `yaml:"base"`
		Pilots int    `yaml:"pilots"`
		Cabin  int    `yaml:"cabin"`
	} `yaml:"crew_bases"`
	Rights []struct {
		Carrier    string `yaml:"carrier"`
		Home       string `yaml:"home"`
		Origin     string `yaml:"origin"`
		Dest       string `yaml:"dest"`
		Granted    bool   `yaml:"granted"`
		Designated bool   `yaml:"designated"`
		WeeklyCap  int    `yaml:"weekly_cap"`
	} `yaml:"rights"`
	MCT []struct {
		Airport    string `yaml:"airport"`
		Connection string `yaml:"connection"`
		Minutes    int    `yaml:"minutes"`
	} `yaml:"mct"`
}

// LoadFile populates the provider from a YAML reference-data file.
func (p *StaticProvider) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	for _, a := range fx.Airports {
		ap := Airport{Code: a.Code, Country: a.Country, Lat: a.Lat, Lon: a.Lon, Coordinated: a.Coordinated}
		for _, c := range a.Curfews {
			start, err := model.ParseTimeOfDay(c.Start)
			if err != nil {
				return fmt.Errorf("airport %s curfew: %w", a.Code, err)
			}
			end, err := model.ParseTimeOfDay(c.End)
			if err != nil {
				return fmt.Errorf("airport %s curfew: %w", a.Code, err)
			}
			ap.Curfews = append(ap.Curfews, Curfew{Start: start, End: end, Strict: c.Strict, Exemptions: c.Exemptions})
		}
		p.AddAirport(ap)
	}
	for _, s := range fx.Slots {
		at, err := model.ParseTimeOfDay(s.Time)
		if err != nil {
			return fmt.Errorf("slot %s %s: %w", s.Airport, s.Flight, err)
		}
		tol := time.Duration(s.Tolerance) * time.Minute
		if tol == 0 {
			tol = 5 * time.Minute
		}
		p.AddSlot(Slot{
			Airport: s.Airport, Movement: s.Movement, Flight: s.Flight,
			Time: at, Confirmed: s.Confirmed,
			ToleranceBefore: tol, ToleranceAfter: tol,
		})
	}
	for _, f := range fx.Fleet {
		ac := Aircraft{Tail: f.Tail, Type: f.Type, Status: AircraftStatus(f.Status), Seats: f.Seats}
		for _, m := range f.Maintenance {
			ac.Maintenance = append(ac.Maintenance, MaintenanceWindow{Start: m.Start, End: m.End, Kind: m.Kind})
		}
		p.AddAircraft(ac)
	}
	for _, b := range fx.CrewBases {
		p.AddCrewBase(CrewBase{Base: b.Base, Pilots: b.Pilots, Cabin: b.Cabin})
	}
	for _, r := range fx.Rights {
		p.AddRights(Rights{
			Carrier: r.Carrier, Home: r.Home,
			Granted: r.Granted, Designated: r.Designated, WeeklyCap: r.WeeklyCap,
		}, r.Origin, r.Dest)
	}
	for _, m := range fx.MCT {
		p.AddMCT(m.Airport, m.Connection, time.Duration(m.Minutes)*time.Minute)
	}
	return nil
}
