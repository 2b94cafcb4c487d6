// Package resolve drives conflicts through the resolution workflow:
// pending, in progress, then one of resolved, accepted as exception,
// cannot resolve or escalated. Terminal states never transition again
// within the same pipeline run. Applying a solution is the pipeline's
// only mutation point; the machine owns the run's occurrence set and
// swaps in a freshly built index after each mutation.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flightworks/schedpipe/core/detect"
	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/logger"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
	"github.com/flightworks/schedpipe/core/validate"
)

// ErrResolutionExhausted reports that a conflict used up its solution
// attempts and moved to cannot_resolve.
var ErrResolutionExhausted = errors.New("resolution attempts exhausted")

// ErrIneffectiveSolution reports that an applied solution failed to
// clear the conflict; the mutation was reverted.
var ErrIneffectiveSolution = errors.New("solution did not clear the conflict")

// DefaultMaxAttempts bounds solution attempts per conflict.
const DefaultMaxAttempts = 3

// AppliedChange is one journal record of a successful mutation.
type AppliedChange struct {
	ConflictID string
	SolutionID string
	Kind       model.SolutionKind
	Occurrence string
	At         time.Time
}

// Machine owns one run's occurrence set and conflict transitions. It is
// single-threaded per run.
type Machine struct {
	log         logger.Logger
	ref         refdata.Provider
	maxAttempts int
	now         func() time.Time

	occs     []model.ScheduleInstance
	baseline []model.ScheduleInstance
	idx      *index.ResourceIndex
	known    map[string]bool
	attempts map[string]int
	journal  []AppliedChange
}

// NewMachine seeds the machine with the run's expanded occurrences.
// maxAttempts <= 0 selects DefaultMaxAttempts.
func NewMachine(occs []model.ScheduleInstance, tolerance time.Duration, ref refdata.Provider, maxAttempts int, log logger.Logger) *Machine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	baseline := make([]model.ScheduleInstance, len(occs))
	copy(baseline, occs)
	working := make([]model.ScheduleInstance, len(occs))
	copy(working, occs)
	return &Machine{
		log:         log,
		ref:         ref,
		maxAttempts: maxAttempts,
		now:         time.Now,
		occs:        working,
		baseline:    baseline,
		idx:         index.Build(working, tolerance),
		known:       make(map[string]bool),
		attempts:    make(map[string]int),
	}
}

// Register records the run's detected conflicts so re-detection after a
// fix can tell fresh clashes from already-known ones.
func (m *Machine) Register(conflicts []model.Conflict) {
	for _, c := range conflicts {
		m.known[c.ID] = true
	}
}

// Index returns the current resource index.
func (m *Machine) Index() *index.ResourceIndex { return m.idx }

// Occurrences returns the current occurrence set.
func (m *Machine) Occurrences() []model.ScheduleInstance { return m.occs }

// Journal lists the mutations applied so far, oldest first.
func (m *Machine) Journal() []AppliedChange { return m.journal }

// Begin moves a pending conflict to in_progress and records who is
// working it.
func (m *Machine) Begin(c *model.Conflict, assignee string) error {
	if c.Status != model.StatusPending {
		return fmt.Errorf("%w: conflict %s is %s, not pending", model.ErrInvariantViolation, c.ID, c.Status)
	}
	c.Assignee = assignee
	m.transition(c, model.StatusInProgress, "assigned to "+assignee)
	return nil
}

// Apply executes one proposed solution against an in_progress conflict.
// An effective fix marks the solution applied, resolves the conflict and
// returns any fresh conflicts the mutation introduced. An ineffective
// fix is reverted and counts against the attempt budget; exhausting the
// budget moves the conflict to cannot_resolve.
func (m *Machine) Apply(ctx context.Context, c *model.Conflict, solutionID string) ([]model.Conflict, error) {
	if c.Status != model.StatusInProgress {
		return nil, fmt.Errorf("%w: conflict %s is %s, not in_progress", model.ErrInvariantViolation, c.ID, c.Status)
	}
	if m.attempts[c.ID] >= m.maxAttempts {
		m.transition(c, model.StatusCannotResolve, "attempt budget exhausted")
		return nil, fmt.Errorf("conflict %s: %w", c.ID, ErrResolutionExhausted)
	}
	m.attempts[c.ID]++

	sol := findSolution(c, solutionID)
	if sol == nil {
		return nil, fmt.Errorf("conflict %s has no solution %s", c.ID, solutionID)
	}

	prior := make([]model.ScheduleInstance, len(m.occs))
	copy(prior, m.occs)

	target, err := m.mutate(c, *sol)
	if err != nil {
		return nil, fmt.Errorf("apply %s to %s: %w", sol.Kind, c.ID, err)
	}
	m.idx = index.Build(m.occs, m.idx.Tolerance())

	redetected := m.redetect(ctx, c)
	if containsID(redetected, c.ID) {
		m.occs = prior
		m.idx = index.Build(m.occs, m.idx.Tolerance())
		m.log.Warnf("conflict %s: solution %s ineffective, reverted (attempt %d/%d)",
			c.ID, solutionID, m.attempts[c.ID], m.maxAttempts)
		if m.attempts[c.ID] >= m.maxAttempts {
			m.transition(c, model.StatusCannotResolve, "no effective solution found")
			return nil, fmt.Errorf("conflict %s: %w", c.ID, ErrResolutionExhausted)
		}
		return nil, fmt.Errorf("conflict %s: %w", c.ID, ErrIneffectiveSolution)
	}

	sol.Applied = true
	m.journal = append(m.journal, AppliedChange{
		ConflictID: c.ID,
		SolutionID: sol.ID,
		Kind:       sol.Kind,
		Occurrence: target,
		At:         m.now(),
	})
	m.transition(c, model.StatusResolved, "applied "+sol.Kind.String())
	m.log.Infof("conflict %s resolved via %s on %s", c.ID, sol.Kind, target)

	var fresh []model.Conflict
	for _, nc := range redetected {
		if !m.known[nc.ID] {
			m.known[nc.ID] = true
			fresh = append(fresh, nc)
		}
	}
	return fresh, nil
}

// AcceptException records an operator override with its justification.
// It counts as resolved for completion purposes.
func (m *Machine) AcceptException(c *model.Conflict, justification string) error {
	if c.Status != model.StatusInProgress {
		return fmt.Errorf("%w: conflict %s is %s, not in_progress", model.ErrInvariantViolation, c.ID, c.Status)
	}
	if justification == "" {
		return fmt.Errorf("conflict %s: exception requires a justification", c.ID)
	}
	c.Justification = justification
	m.transition(c, model.StatusAcceptedAsException, justification)
	return nil
}

// Escalate hands the conflict to human sign-off. Blocking severities
// keep blocking pipeline completion.
func (m *Machine) Escalate(c *model.Conflict, note string) error {
	if c.Status != model.StatusInProgress {
		return fmt.Errorf("%w: conflict %s is %s, not in_progress", model.ErrInvariantViolation, c.ID, c.Status)
	}
	m.transition(c, model.StatusEscalated, note)
	return nil
}

// CannotResolve gives up on the conflict explicitly.
func (m *Machine) CannotResolve(c *model.Conflict, note string) error {
	if c.Status != model.StatusInProgress {
		return fmt.Errorf("%w: conflict %s is %s, not in_progress", model.ErrInvariantViolation, c.ID, c.Status)
	}
	m.transition(c, model.StatusCannotResolve, note)
	return nil
}

// Rollback reverts every applied mutation, restoring the occurrence set
// and index to their pre-run state.
func (m *Machine) Rollback() {
	m.occs = make([]model.ScheduleInstance, len(m.baseline))
	copy(m.occs, m.baseline)
	m.idx = index.Build(m.occs, m.idx.Tolerance())
	if n := len(m.journal); n > 0 {
		m.log.Warnf("rolled back %d applied resolution(s)", n)
	}
	m.journal = nil
}

func (m *Machine) transition(c *model.Conflict, to model.ResolutionStatus, note string) {
	c.History = append(c.History, model.Transition{From: c.Status, To: to, At: m.now(), Note: note})
	c.Status = to
}

func findSolution(c *model.Conflict, id string) *model.Solution {
	for i := range c.Solutions {
		if c.Solutions[i].ID == id {
			return &c.Solutions[i]
		}
	}
	return nil
}

func containsID(conflicts []model.Conflict, id string) bool {
	for _, c := range conflicts {
		if c.ID == id {
			return true
		}
	}
	return false
}

// mutate applies the solution to the working occurrence set and returns
// the ID of the occurrence it touched. All updates land in one slice
// swap so the index never observes a half-applied change.
func (m *Machine) mutate(c *model.Conflict, sol model.Solution) (string, error) {
	switch sol.Kind {
	case model.SolutionWaive:
		// A waiver changes nothing in the schedule, so it can never pass
		// the effectiveness re-check. Operators record it via
		// AcceptException with a justification instead.
		return "", errors.New("waiver is not a schedule mutation; use AcceptException")
	case model.SolutionReassignTail:
		if sol.NewTail == "" {
			return "", errors.New("reassignment needs a target tail")
		}
		p, err := m.target(c)
		if err != nil {
			return "", err
		}
		clone := *m.occs[p].Template
		clone.Tail = sol.NewTail
		m.occs[p].Template = &clone
		return m.occs[p].ID(), nil
	case model.SolutionRetime:
		if sol.Shift == 0 {
			return "", errors.New("retiming needs a non-zero shift")
		}
		p, err := m.target(c)
		if err != nil {
			return "", err
		}
		m.occs[p].Departure = m.occs[p].Departure.Add(sol.Shift)
		m.occs[p].Arrival = m.occs[p].Arrival.Add(sol.Shift)
		return m.occs[p].ID(), nil
	case model.SolutionCancelOccurrence:
		p, err := m.target(c)
		if err != nil {
			return "", err
		}
		id := m.occs[p].ID()
		m.occs = append(m.occs[:p:p], m.occs[p+1:]...)
		return id, nil
	default:
		return "", fmt.Errorf("unknown solution kind %d", sol.Kind)
	}
}

// target picks the occurrence a fix operates on: the latest-departing
// member of the conflict, so earlier flights keep their published times.
func (m *Machine) target(c *model.Conflict) (int, error) {
	best := -1
	for i, occ := range m.occs {
		if !contains(c.Occurrences, occ.ID()) {
			continue
		}
		if best < 0 || occ.Departure.After(m.occs[best].Departure) {
			best = i
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("conflict %s references no current occurrence", c.ID)
	}
	return best, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// scopedCategories maps the mutated resource kind to the validators
// whose findings it can change.
func scopedCategories(kind model.ResourceKind) map[model.Category]bool {
	switch kind {
	case model.ResourceAirport:
		return map[model.Category]bool{
			model.CategorySlot: true, model.CategoryCurfew: true, model.CategoryMCT: true,
		}
	case model.ResourceCrewBase:
		return map[model.Category]bool{model.CategoryCrew: true}
	default:
		return map[model.Category]bool{
			model.CategoryAircraft: true, model.CategoryRouting: true,
		}
	}
}

// redetect re-runs the validators scoped to the conflict's resource kind
// and regroups their findings. Content-hash conflict IDs make the result
// directly comparable with the run's known set.
func (m *Machine) redetect(ctx context.Context, c *model.Conflict) []model.Conflict {
	cats := scopedCategories(c.Resource.Kind)
	var issues []model.Issue
	for _, v := range validate.All() {
		if !cats[v.Category()] {
			continue
		}
		issues = append(issues, v.Validate(ctx, m.occs, m.idx, m.ref)...)
	}
	return detect.Detect(issues, m.idx)
}
