package model

import (
	"fmt"
	"time"
)

// ScheduleInstance is one concrete calendar-date realization of a flight
// template. Instances are derived values: they are materialized on demand
// by the expander and never persisted, so re-expansion of an unchanged
// template always reproduces them.
type ScheduleInstance struct {
	Template  *FlightTemplate
	Date      time.Time // operating date, UTC midnight
	Departure time.Time // Date + local departure time
	Arrival   time.Time // Date + arrival day offset + local arrival time
}

// ID identifies the occurrence within a schedule version, e.g.
// "DL204/2025-01-06".
func (o ScheduleInstance) ID() string {
	return fmt.Sprintf("%s/%s", o.Template.Designator(), o.Date.Format(DateLayout))
}

// BlockTime is the scheduled gate-to-gate duration.
func (o ScheduleInstance) BlockTime() time.Duration {
	return o.Arrival.Sub(o.Departure)
}

// Overlaps reports whether the two occurrences' departure-to-arrival
// windows intersect.
func (o ScheduleInstance) Overlaps(other ScheduleInstance) bool {
	return o.Departure.Before(other.Arrival) && other.Departure.Before(o.Arrival)
}

// ResourceKind distinguishes the three indexed resource views.
type ResourceKind int

const (
	ResourceTail ResourceKind = iota
	ResourceAirport
	ResourceCrewBase
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceTail:
		return "tail"
	case ResourceAirport:
		return "airport"
	case ResourceCrewBase:
		return "crew_base"
	default:
		return "unknown"
	}
}

// ResourceKey identifies one shared resource: an aircraft registration, an
// airport movement bucket, or a crew base. Issues referencing the same key
// are candidates for merging into one conflict.
type ResourceKey struct {
	Kind  ResourceKind
	Value string
}

func (k ResourceKey) String() string {
	return k.Kind.String() + ":" + k.Value
}

// TailKey keys the aircraft view by registration.
func TailKey(tail string) ResourceKey {
	return ResourceKey{Kind: ResourceTail, Value: tail}
}

// AirportKey keys the airport view by code, movement direction and rounded
// time bucket.
func AirportKey(code, movement string, bucket int) ResourceKey {
	return ResourceKey{Kind: ResourceAirport, Value: fmt.Sprintf("%s:%s:%d", code, movement, bucket)}
}

// CrewBaseKey keys the crew view by base code.
func CrewBaseKey(base string) ResourceKey {
	return ResourceKey{Kind: ResourceCrewBase, Value: base}
}
