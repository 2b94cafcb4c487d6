package schedule

import (
	"fmt"
	"sync"

	"github.com/flightworks/schedpipe/core/model"
)

// Schedule is a versioned container of flight templates for one airline
// season. The version increments on every applied change-set so pipeline
// runs can pin the exact state they validated.
type Schedule struct {
	ID        string
	Airline   string
	Season    string // e.g. "S25", "W25"
	Version   int
	Templates []model.FlightTemplate
}

// templateIndex returns the position of a template by ID, or -1.
func (s *Schedule) templateIndex(id string) int {
	for i, t := range s.Templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// ChangeAction enumerates the operations the ingestion collaborator may
// submit.
type ChangeAction int

const (
	ActionCreate ChangeAction = iota
	ActionModify
	ActionCancel
)

func (a ChangeAction) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionModify:
		return "modify"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Change is one template operation, already parsed and typed by the
// ingestion collaborator. SourceAction correlates back to the originating
// change request.
type Change struct {
	Action       ChangeAction
	Template     model.FlightTemplate
	SourceAction string
}

// Store holds schedules and applies ingestion change-sets. Apply is the
// only mutation path; validation runs always read a fixed version.
type Store struct {
	mu        sync.RWMutex
	schedules map[string]*Schedule
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{schedules: make(map[string]*Schedule)}
}

// Put registers a schedule, replacing any previous one with the same ID.
func (st *Store) Put(s *Schedule) {
	st.mu.Lock()
	st.schedules[s.ID] = s
	st.mu.Unlock()
}

// Get returns a deep-enough copy of the schedule for a validation run:
// the template slice is cloned so a concurrent Apply cannot mutate it.
func (st *Store) Get(id string) (*Schedule, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.schedules[id]
	if !ok {
		return nil, false
	}
	cp := *s
	cp.Templates = append([]model.FlightTemplate(nil), s.Templates...)
	return &cp, true
}

// Apply validates and applies a change-set atomically, bumping the
// schedule version once. Invalid templates are rejected here, at the
// ingestion boundary, and never enter expansion.
func (st *Store) Apply(scheduleID string, changes []Change) (int, error) {
	for _, c := range changes {
		if c.Action == ActionCancel {
			continue
		}
		if err := c.Template.Validate(); err != nil {
			return 0, fmt.Errorf("change %s (%s): %w", c.Template.Designator(), c.SourceAction, err)
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.schedules[scheduleID]
	if !ok {
		return 0, fmt.Errorf("unknown schedule %q", scheduleID)
	}
	for _, c := range changes {
		idx := s.templateIndex(c.Template.ID)
		switch c.Action {
		case ActionCreate:
			if idx >= 0 {
				return 0, fmt.Errorf("create %s: template %q already exists", c.SourceAction, c.Template.ID)
			}
			s.Templates = append(s.Templates, c.Template)
		case ActionModify:
			if idx < 0 {
				return 0, fmt.Errorf("modify %s: template %q not found", c.SourceAction, c.Template.ID)
			}
			s.Templates[idx] = c.Template
		case ActionCancel:
			if idx < 0 {
				return 0, fmt.Errorf("cancel %s: template %q not found", c.SourceAction, c.Template.ID)
			}
			s.Templates = append(s.Templates[:idx], s.Templates[idx+1:]...)
		}
	}
	s.Version++
	return s.Version, nil
}
