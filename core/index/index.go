// Package index builds per-run keyed views over schedule occurrences.
// An index is a pure snapshot: validators and the detector read it
// concurrently, and the only way to change it is to rebuild it.
package index

import (
	"sort"
	"time"

	"github.com/flightworks/schedpipe/core/model"
)

// DefaultBucketTolerance is the airport time-bucket width used when no
// tolerance is configured.
const DefaultBucketTolerance = 5 * time.Minute

// Movement directions of the airport view.
const (
	MovementDeparture = "dep"
	MovementArrival   = "arr"
)

// ResourceIndex partitions occurrences into three keyed views: by
// aircraft tail, by airport movement bucket, and by crew base. Each
// per-key list is ordered by departure time to support sequential-pair
// scans.
type ResourceIndex struct {
	tolerance time.Duration
	byID      map[string]model.ScheduleInstance
	byTail    map[string][]model.ScheduleInstance
	byAirport map[model.ResourceKey][]model.ScheduleInstance
	byBase    map[string][]model.ScheduleInstance
}

// Build constructs a fresh index over the occurrence set. tolerance
// configures the airport bucket width; zero selects the default.
func Build(occurrences []model.ScheduleInstance, tolerance time.Duration) *ResourceIndex {
	if tolerance <= 0 {
		tolerance = DefaultBucketTolerance
	}
	idx := &ResourceIndex{
		tolerance: tolerance,
		byID:      make(map[string]model.ScheduleInstance, len(occurrences)),
		byTail:    make(map[string][]model.ScheduleInstance),
		byAirport: make(map[model.ResourceKey][]model.ScheduleInstance),
		byBase:    make(map[string][]model.ScheduleInstance),
	}
	for _, occ := range occurrences {
		idx.byID[occ.ID()] = occ
		if tail := occ.Template.Tail; tail != "" {
			idx.byTail[tail] = append(idx.byTail[tail], occ)
		}
		dep := idx.airportKey(occ.Template.Origin, MovementDeparture, occ.Departure)
		idx.byAirport[dep] = append(idx.byAirport[dep], occ)
		arr := idx.airportKey(occ.Template.Destination, MovementArrival, occ.Arrival)
		idx.byAirport[arr] = append(idx.byAirport[arr], occ)
		if base := occ.Template.CrewBase; base != "" {
			idx.byBase[base] = append(idx.byBase[base], occ)
		}
	}
	for k := range idx.byTail {
		sortByDeparture(idx.byTail[k])
	}
	for k := range idx.byAirport {
		sortByDeparture(idx.byAirport[k])
	}
	for k := range idx.byBase {
		sortByDeparture(idx.byBase[k])
	}
	return idx
}

func sortByDeparture(list []model.ScheduleInstance) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Departure.Equal(list[j].Departure) {
			return list[i].Departure.Before(list[j].Departure)
		}
		return list[i].ID() < list[j].ID()
	})
}

// airportKey buckets a movement time to the index tolerance.
func (idx *ResourceIndex) airportKey(code, movement string, at time.Time) model.ResourceKey {
	bucket := int(at.Unix() / int64(idx.tolerance.Seconds()))
	return model.AirportKey(code, movement, bucket)
}

// Tolerance returns the configured airport bucket width.
func (idx *ResourceIndex) Tolerance() time.Duration { return idx.tolerance }

// Occurrence resolves an occurrence ID back to its instance.
func (idx *ResourceIndex) Occurrence(id string) (model.ScheduleInstance, bool) {
	occ, ok := idx.byID[id]
	return occ, ok
}

// Len returns the number of indexed occurrences.
func (idx *ResourceIndex) Len() int { return len(idx.byID) }

// Tails lists aircraft registrations present in the index, sorted.
func (idx *ResourceIndex) Tails() []string {
	out := make([]string, 0, len(idx.byTail))
	for tail := range idx.byTail {
		out = append(out, tail)
	}
	sort.Strings(out)
	return out
}

// ByTail returns the time-ordered occurrences assigned to a tail.
func (idx *ResourceIndex) ByTail(tail string) []model.ScheduleInstance {
	return idx.byTail[tail]
}

// CrewBases lists crew bases present in the index, sorted.
func (idx *ResourceIndex) CrewBases() []string {
	out := make([]string, 0, len(idx.byBase))
	for base := range idx.byBase {
		out = append(out, base)
	}
	sort.Strings(out)
	return out
}

// ByCrewBase returns the time-ordered occurrences touching a crew base.
func (idx *ResourceIndex) ByCrewBase(base string) []model.ScheduleInstance {
	return idx.byBase[base]
}

// AirportBucket returns the occurrences sharing the movement bucket that
// contains at.
func (idx *ResourceIndex) AirportBucket(code, movement string, at time.Time) []model.ScheduleInstance {
	return idx.byAirport[idx.airportKey(code, movement, at)]
}

// AirportKeyFor exposes the bucket key an occurrence's movement maps to,
// so validators can attach the same resource key the detector groups by.
func (idx *ResourceIndex) AirportKeyFor(code, movement string, at time.Time) model.ResourceKey {
	return idx.airportKey(code, movement, at)
}

// Snapshot returns a key/value copy of every view, used to verify that a
// rollback restored the index exactly.
func (idx *ResourceIndex) Snapshot() map[string][]string {
	out := make(map[string][]string)
	add := func(key model.ResourceKey, list []model.ScheduleInstance) {
		ids := make([]string, len(list))
		for i, occ := range list {
			ids[i] = occ.ID()
		}
		out[key.String()] = ids
	}
	for tail, list := range idx.byTail {
		add(model.TailKey(tail), list)
	}
	for key, list := range idx.byAirport {
		add(key, list)
	}
	for base, list := range idx.byBase {
		add(model.CrewBaseKey(base), list)
	}
	return out
}
