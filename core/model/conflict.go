package model

import "time"

// ConflictType tags the resource clash a conflict describes.
type ConflictType int

const (
	AircraftOverlap ConflictType = iota
	SlotConflict
	MCTViolation
	CurfewViolation
	RoutingMismatch
	RegulatoryViolation
	CapacityExceeded
	CrewUnavailable
)

func (t ConflictType) String() string {
	switch t {
	case AircraftOverlap:
		return "aircraft_overlap"
	case SlotConflict:
		return "slot_conflict"
	case MCTViolation:
		return "mct_violation"
	case CurfewViolation:
		return "curfew_violation"
	case RoutingMismatch:
		return "routing_mismatch"
	case RegulatoryViolation:
		return "regulatory_violation"
	case CapacityExceeded:
		return "capacity_exceeded"
	case CrewUnavailable:
		return "crew_unavailable"
	default:
		return "unknown"
	}
}

// ResolutionStatus tracks a conflict through the resolution workflow.
type ResolutionStatus int

const (
	StatusPending ResolutionStatus = iota
	StatusInProgress
	StatusResolved
	StatusAcceptedAsException
	StatusCannotResolve
	StatusEscalated
)

func (s ResolutionStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusResolved:
		return "resolved"
	case StatusAcceptedAsException:
		return "accepted_as_exception"
	case StatusCannotResolve:
		return "cannot_resolve"
	case StatusEscalated:
		return "escalated"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further transitions
// within the same pipeline run.
func (s ResolutionStatus) Terminal() bool {
	switch s {
	case StatusResolved, StatusAcceptedAsException, StatusCannotResolve, StatusEscalated:
		return true
	}
	return false
}

// Settled reports whether the status counts as resolved for
// pipeline-completion purposes.
func (s ResolutionStatus) Settled() bool {
	return s == StatusResolved || s == StatusAcceptedAsException
}

// SolutionKind enumerates the fixes the resolver knows how to apply.
type SolutionKind int

const (
	SolutionReassignTail SolutionKind = iota
	SolutionRetime
	SolutionCancelOccurrence
	SolutionWaive
)

func (k SolutionKind) String() string {
	switch k {
	case SolutionReassignTail:
		return "reassign_tail"
	case SolutionRetime:
		return "retime"
	case SolutionCancelOccurrence:
		return "cancel_occurrence"
	case SolutionWaive:
		return "waive"
	default:
		return "unknown"
	}
}

// Solution is one proposed fix for a conflict. Exactly one applied
// solution is required before a conflict may resolve.
type Solution struct {
	ID          string
	Kind        SolutionKind
	Description string
	NewTail     string        // for SolutionReassignTail
	Shift       time.Duration // for SolutionRetime
	Applied     bool
}

// Transition records one resolution-status change for audit.
type Transition struct {
	From ResolutionStatus
	To   ResolutionStatus
	At   time.Time
	Note string
}

// Conflict is a deduplicated grouping of issues describing the same
// underlying resource clash. Conflicts are created by the detector and
// mutated only by the resolution state machine.
type Conflict struct {
	ID            string // content hash, stable across repeated detection
	Type          ConflictType
	Severity      Severity
	Occurrences   []string
	Resource      ResourceKey
	Issues        []Issue
	ImpactScore   float64
	Status        ResolutionStatus
	Solutions     []Solution
	Assignee      string
	Justification string
	History       []Transition
}

// AppliedSolution returns the solution marked applied, if any.
func (c *Conflict) AppliedSolution() (Solution, bool) {
	for _, s := range c.Solutions {
		if s.Applied {
			return s, true
		}
	}
	return Solution{}, false
}
