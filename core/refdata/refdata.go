// Package refdata defines the reference-data collaborator consumed by
// the constraint validators: slot confirmations, curfew windows, MCT
// tables, fleet and maintenance records, crew-base capacity and
// regulatory rights. Unavailability of a record never aborts validation;
// callers degrade to info-severity issues on ErrUnavailable.
package refdata

import (
	"context"
	"errors"
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

// ErrUnavailable reports that a specific reference record could not be
// served. It is advisory: validators degrade, they do not abort.
var ErrUnavailable = errors.New("reference data unavailable")

// Airport describes one airport's reference record.
type Airport struct {
	Code        string
	Country     string // ISO country code
	Lat, Lon    float64
	Coordinated bool // IATA Level 3: slots required
	Curfews     []Curfew
}

// Curfew is a movement-restriction window in local time. Windows whose
// start is later than their end wrap around midnight.
type Curfew struct {
	Start      model.TimeOfDay
	End        model.TimeOfDay
	Strict     bool
	Exemptions []string // carrier codes exempt from the window
}

// Covers reports whether t falls inside the window, honouring wraparound
// (23:00-06:00 covers 23:30 and 05:59, not 12:00).
func (c Curfew) Covers(t model.TimeOfDay) bool {
	if c.Start <= c.End {
		return t >= c.Start && t < c.End
	}
	return t >= c.Start || t < c.End
}

// Slot is one coordinator-allocated movement permission.
type Slot struct {
	Airport         string
	Movement        string // index.MovementDeparture / MovementArrival
	Flight          string // carrier-qualified designator
	Time            model.TimeOfDay
	Confirmed       bool
	ToleranceBefore time.Duration
	ToleranceAfter  time.Duration
	Historical      bool
}

// AircraftStatus is the fleet-record state of a tail.
type AircraftStatus string

const (
	AircraftActive      AircraftStatus = "active"
	AircraftMaintenance AircraftStatus = "maintenance"
	AircraftStored      AircraftStatus = "stored"
)

// MaintenanceWindow is a scheduled out-of-service period.
type MaintenanceWindow struct {
	Start, End time.Time
	Kind       string
	Location   string
}

// Aircraft is one fleet record.
type Aircraft struct {
	Tail        string
	Type        string
	Status      AircraftStatus
	Seats       int
	Maintenance []MaintenanceWindow
}

// InMaintenance reports whether any window covers the given span.
func (a Aircraft) InMaintenance(from, to time.Time) (MaintenanceWindow, bool) {
	for _, w := range a.Maintenance {
		if from.Before(w.End) && w.Start.Before(to) {
			return w, true
		}
	}
	return MaintenanceWindow{}, false
}

// CrewBase is the crew capacity record for one base.
type CrewBase struct {
	Base   string
	Pilots int
	Cabin  int
}

// Rights is a carrier's regulatory record for a country pair.
type Rights struct {
	Carrier    string
	Home       string // carrier home country
	Granted    bool
	Designated bool // designated under the bilateral agreement
	WeeklyCap  int  // frequency cap, 0 = uncapped
}

// Provider is the reference-data collaborator. Implementations may call
// out to external systems; every method honours the context and returns
// ErrUnavailable (possibly wrapped) when a record cannot be served.
type Provider interface {
	Airport(ctx context.Context, code string) (Airport, error)
	Slot(ctx context.Context, airport, movement, flight string, date time.Time) (Slot, error)
	Aircraft(ctx context.Context, tail string) (Aircraft, error)
	CrewBase(ctx context.Context, base string) (CrewBase, error)
	Rights(ctx context.Context, carrier, originCountry, destCountry string) (Rights, error)
	MCT(ctx context.Context, airport, connection string) (time.Duration, error)
}
