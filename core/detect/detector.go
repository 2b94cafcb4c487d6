// Package detect turns validation issues into deduplicated conflicts.
// It adds its own aircraft pair scan on top of the validator findings,
// groups issues that describe the same resource clash, and ranks the
// result by operational impact. Detection is deterministic: the same
// occurrence set always yields the same conflict content and IDs.
package detect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/model"
)

// Pair-scan finding kinds for occurrences sharing a tail on one date.
const (
	KindSimultaneousDeparture = "simultaneous_departure"
	KindOverlappingTimes      = "overlapping_times"
	KindRotationBreak         = "rotation_break"
)

// Detect builds the conflict set for one run from the validator issues
// and the resource index. Info-severity findings stay advisory and
// never become conflicts.
func Detect(issues []model.Issue, idx *index.ResourceIndex) []model.Conflict {
	all := pairScan(idx)
	for _, is := range issues {
		if is.Severity > model.SeverityInfo {
			all = append(all, is)
		}
	}

	conflicts := make([]model.Conflict, 0)
	for _, g := range group(all) {
		conflicts = append(conflicts, build(g, idx))
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].ImpactScore != conflicts[j].ImpactScore {
			return conflicts[i].ImpactScore > conflicts[j].ImpactScore
		}
		return conflicts[i].ID < conflicts[j].ID
	})
	return conflicts
}

// pairScan compares every unordered pair of same-tail occurrences on
// the same date. It catches double bookings the per-category validators
// express only indirectly.
func pairScan(idx *index.ResourceIndex) []model.Issue {
	var issues []model.Issue
	for _, tail := range idx.Tails() {
		byDate := make(map[time.Time][]model.ScheduleInstance)
		for _, leg := range idx.ByTail(tail) {
			byDate[leg.Date] = append(byDate[leg.Date], leg)
		}
		dates := make([]time.Time, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		for _, date := range dates {
			issues = append(issues, scanDay(tail, byDate[date])...)
		}
	}
	return issues
}

// scanDay evaluates each unordered pair once; legs arrive ordered by
// departure time. The rotation rule binds every pair, not just
// consecutive legs: any earlier arrival whose airport differs from a
// later departure's origin breaks the chain.
func scanDay(tail string, legs []model.ScheduleInstance) []model.Issue {
	var issues []model.Issue
	key := model.TailKey(tail)
	for i, a := range legs {
		for _, b := range legs[i+1:] {
			switch {
			case a.Departure.Equal(b.Departure):
				issues = append(issues, pairIssue(key, a, b, KindSimultaneousDeparture,
					fmt.Sprintf("tail %s departs as %s and %s at the same time", tail, a.ID(), b.ID())))
			case a.Overlaps(b):
				issues = append(issues, pairIssue(key, a, b, KindOverlappingTimes,
					fmt.Sprintf("tail %s is double-booked: %s overlaps %s", tail, a.ID(), b.ID())))
			case a.Template.Destination != b.Template.Origin && a.Arrival.Before(b.Departure):
				issues = append(issues, model.Issue{
					Category:          model.CategoryRouting,
					Severity:          model.SeverityHigh,
					Kind:              KindRotationBreak,
					Occurrences:       []string{a.ID(), b.ID()},
					Resource:          key,
					Description:       fmt.Sprintf("tail %s lands at %s but later departs from %s", tail, a.Template.Destination, b.Template.Origin),
					RecommendedAction: "Insert a positioning flight or swap the aircraft",
				})
			}
		}
	}
	return issues
}

func pairIssue(key model.ResourceKey, a, b model.ScheduleInstance, kind, desc string) model.Issue {
	return model.Issue{
		Category:          model.CategoryAircraft,
		Severity:          model.SeverityCritical,
		Kind:              kind,
		Occurrences:       []string{a.ID(), b.ID()},
		Resource:          key,
		Description:       desc,
		RecommendedAction: "Reassign one flight to a different aircraft",
	}
}

// group merges issues into conflict groups. Two issues merge iff they
// share at least one occurrence and the same resource key; issues
// without a resource key stay singleton groups.
func group(issues []model.Issue) [][]model.Issue {
	parent := make([]int, len(issues))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) { parent[find(i)] = find(j) }

	seen := make(map[string]int)
	for i, is := range issues {
		if is.Resource.Value == "" {
			continue
		}
		for _, occ := range is.Occurrences {
			key := is.Resource.String() + "|" + occ
			if j, ok := seen[key]; ok {
				union(i, j)
			} else {
				seen[key] = i
			}
		}
	}

	byRoot := make(map[int][]model.Issue)
	roots := make([]int, 0)
	for i, is := range issues {
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], is)
	}
	sort.Ints(roots)
	out := make([][]model.Issue, len(roots))
	for i, r := range roots {
		out[i] = byRoot[r]
	}
	return out
}

// build condenses one issue group into a conflict with a content-hash
// identity, so repeated detection over an unchanged schedule reproduces
// the same IDs.
func build(group []model.Issue, idx *index.ResourceIndex) model.Conflict {
	lead := group[0]
	severity := lead.Severity
	occSet := make(map[string]bool)
	for _, is := range group {
		if is.Severity > severity {
			severity = is.Severity
			lead = is
		}
		for _, occ := range is.Occurrences {
			occSet[occ] = true
		}
	}
	occurrences := make([]string, 0, len(occSet))
	for occ := range occSet {
		occurrences = append(occurrences, occ)
	}
	sort.Strings(occurrences)

	ctype := conflictType(lead)
	id := conflictID(ctype, lead.Resource, occurrences)
	c := model.Conflict{
		ID:          id,
		Type:        ctype,
		Severity:    severity,
		Occurrences: occurrences,
		Resource:    lead.Resource,
		Issues:      group,
		ImpactScore: impactScore(severity, occurrences, group, idx),
		Status:      model.StatusPending,
	}
	c.Solutions = propose(&c)
	return c
}

// conflictType maps the leading issue to the conflict taxonomy.
func conflictType(is model.Issue) model.ConflictType {
	if is.Kind == "frequency_cap_exceeded" {
		return model.CapacityExceeded
	}
	switch is.Category {
	case model.CategorySlot:
		return model.SlotConflict
	case model.CategoryCrew:
		return model.CrewUnavailable
	case model.CategoryMCT:
		return model.MCTViolation
	case model.CategoryCurfew:
		return model.CurfewViolation
	case model.CategoryRouting:
		return model.RoutingMismatch
	case model.CategoryRegulatory, model.CategoryPattern:
		return model.RegulatoryViolation
	default:
		return model.AircraftOverlap
	}
}

func conflictID(t model.ConflictType, resource model.ResourceKey, occurrences []string) string {
	sum := sha256.Sum256([]byte(t.String() + "|" + resource.String() + "|" + strings.Join(occurrences, ",")))
	return hex.EncodeToString(sum[:])[:16]
}

// impactScore ranks resolution priority: severity dominates, passenger
// exposure and schedule slack break ties. The score never affects
// correctness, only ordering.
func impactScore(severity model.Severity, occurrences []string, group []model.Issue, idx *index.ResourceIndex) float64 {
	score := float64(severity) * 100
	for _, id := range occurrences {
		if occ, ok := idx.Occurrence(id); ok {
			score += float64(occ.Template.Seats) / 10
		}
	}
	delay := 0
	for _, is := range group {
		if d := deficitMinutes(is); d > delay {
			delay = d
		}
	}
	score += float64(delay)
	if score > 1000 {
		score = 1000
	}
	return score
}

// deficitMinutes estimates how many minutes of schedule slack the issue
// is missing, from the typed extras validators attach.
func deficitMinutes(is model.Issue) int {
	actual, okA := fieldInt(is.Fields, "turnaround_minutes")
	required, okR := fieldInt(is.Fields, "minimum_required")
	if !okA {
		actual, okA = fieldInt(is.Fields, "connection_minutes")
		required, okR = fieldInt(is.Fields, "required_minutes")
	}
	if okA && okR && required > actual {
		return required - actual
	}
	if off, ok := fieldInt(is.Fields, "offset_minutes"); ok {
		if off < 0 {
			return -off
		}
		return off
	}
	return 0
}

func fieldInt(fields map[string]any, key string) (int, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// propose seeds each conflict with the fixes its type admits. Solution
// IDs derive from the conflict ID so repeated detection reproduces
// them.
func propose(c *model.Conflict) []model.Solution {
	var out []model.Solution
	add := func(kind model.SolutionKind, desc string) {
		out = append(out, model.Solution{
			ID:          fmt.Sprintf("%s-s%d", c.ID, len(out)+1),
			Kind:        kind,
			Description: desc,
		})
	}
	switch c.Type {
	case model.AircraftOverlap, model.RoutingMismatch:
		add(model.SolutionReassignTail, "Move one flight to a different aircraft")
		add(model.SolutionRetime, "Shift a departure to restore separation")
	case model.MCTViolation, model.CurfewViolation, model.SlotConflict:
		add(model.SolutionRetime, "Retime the movement into a permitted window")
		add(model.SolutionCancelOccurrence, "Cancel the occurrence for the affected dates")
	case model.CrewUnavailable:
		add(model.SolutionRetime, "Spread the flying to relieve the constrained resource")
	case model.CapacityExceeded:
		add(model.SolutionCancelOccurrence, "Reduce the frequency on the affected dates")
	}
	// Anything else has no automatic fix; it stays open until an
	// operator accepts it as an exception or the run fails.
	return out
}
