// Package advisory turns a run's final conflict set into ranked
// root-cause groupings and recommended actions. The report is purely
// additive: the orchestrator never consults it, and producing it can
// never change pipeline state.
package advisory

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/flightworks/schedpipe/core/model"
)

// Root-cause thresholds: below these counts a pattern is noise, above
// them it points at a structural schedule problem.
const (
	routingThreshold    = 5
	turnaroundThreshold = 3
	slotThreshold       = 2
	crewThreshold       = 5
)

// Priority places a recommendation in the impact/effort matrix.
type Priority int

const (
	PriorityDoFirst  Priority = iota // high impact, low effort
	PriorityPlanned                  // high impact, high effort
	PriorityQuickWin                 // low impact, low effort
	PriorityDeferred                 // low impact, high effort
)

func (p Priority) String() string {
	switch p {
	case PriorityDoFirst:
		return "do_first"
	case PriorityPlanned:
		return "planned"
	case PriorityQuickWin:
		return "quick_win"
	case PriorityDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// RootCause is one structural problem the conflict set points at.
type RootCause struct {
	Kind   string
	Count  int
	Share  float64 // fraction of all conflicts tied to this cause
	Detail string
}

// Recommendation is one suggested follow-up, placed in the matrix.
type Recommendation struct {
	Priority    Priority
	Action      string
	ConflictIDs []string
}

// Report is the full advisory output for one run.
type Report struct {
	RunID           string
	Conflicts       int
	Blocking        int
	MeanImpact      float64
	PeakImpact      float64
	RootCauses      []RootCause
	Recommendations []Recommendation
	Verdict         string
}

// Analyzer produces advisory reports. Implementations must be
// deterministic for a given conflict set.
type Analyzer interface {
	Analyze(ctx context.Context, runID string, conflicts []model.Conflict) (Report, error)
}

// RuleAnalyzer is the deterministic rule-based Analyzer.
type RuleAnalyzer struct{}

func (RuleAnalyzer) Analyze(_ context.Context, runID string, conflicts []model.Conflict) (Report, error) {
	rep := Report{RunID: runID, Conflicts: len(conflicts)}
	if len(conflicts) == 0 {
		rep.Verdict = "clean: no conflicts detected"
		return rep, nil
	}

	impacts := make([]float64, len(conflicts))
	for i, c := range conflicts {
		impacts[i] = c.ImpactScore
		if c.Severity.Blocking() && !c.Status.Settled() {
			rep.Blocking++
		}
	}
	rep.MeanImpact = stat.Mean(impacts, nil)
	rep.PeakImpact = floats.Max(impacts)

	rep.RootCauses = rootCauses(conflicts)
	rep.Recommendations = recommend(conflicts)
	rep.Verdict = verdict(rep)
	return rep, nil
}

// rootCauses counts the issue kinds that indicate structural problems
// and keeps those over their threshold, most frequent first.
func rootCauses(conflicts []model.Conflict) []RootCause {
	counts := make(map[string]int)
	for _, c := range conflicts {
		seen := make(map[string]bool)
		for _, is := range c.Issues {
			key := causeKey(is)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}

	total := float64(len(conflicts))
	var causes []RootCause
	add := func(kind string, threshold int, detail string) {
		if n := counts[kind]; n > threshold {
			causes = append(causes, RootCause{
				Kind:   kind,
				Count:  n,
				Share:  float64(n) / total,
				Detail: detail,
			})
		}
	}
	add("routing_discontinuity", routingThreshold,
		"aircraft rotations are broken; review tail assignments as a set, not per flight")
	add("insufficient_turnaround", turnaroundThreshold,
		"ground times are systematically too tight; revisit block-time assumptions")
	add("missing_slot", slotThreshold,
		"schedule was built ahead of slot clearance; reconcile with coordinators")
	add("crew_shortfall", crewThreshold,
		"crew plan does not cover the flying program; rebalance bases or trim frequencies")

	sort.Slice(causes, func(i, j int) bool {
		if causes[i].Count != causes[j].Count {
			return causes[i].Count > causes[j].Count
		}
		return causes[i].Kind < causes[j].Kind
	})
	return causes
}

// causeKey maps an issue to its root-cause bucket, or "" when the issue
// carries no structural signal. Crew findings collapse into one bucket.
func causeKey(is model.Issue) string {
	switch is.Kind {
	case "routing_discontinuity", "insufficient_turnaround", "missing_slot":
		return is.Kind
	}
	if is.Category == model.CategoryCrew && is.Severity > model.SeverityInfo {
		return "crew_shortfall"
	}
	return ""
}

// recommend places each unsettled conflict in the impact/effort matrix.
// Reassignable or retimeable conflicts are cheap to act on; waive-only
// conflicts need operator judgement and count as expensive.
func recommend(conflicts []model.Conflict) []Recommendation {
	byPriority := make(map[Priority][]string)
	for _, c := range conflicts {
		if c.Status.Settled() {
			continue
		}
		highImpact := c.ImpactScore >= 500
		lowEffort := false
		for _, s := range c.Solutions {
			if s.Kind == model.SolutionReassignTail || s.Kind == model.SolutionRetime {
				lowEffort = true
				break
			}
		}
		p := PriorityDeferred
		switch {
		case highImpact && lowEffort:
			p = PriorityDoFirst
		case highImpact:
			p = PriorityPlanned
		case lowEffort:
			p = PriorityQuickWin
		}
		byPriority[p] = append(byPriority[p], c.ID)
	}

	actions := map[Priority]string{
		PriorityDoFirst:  "Resolve immediately: high operational impact with a mechanical fix available",
		PriorityPlanned:  "Schedule operator review: high impact but no mechanical fix",
		PriorityQuickWin: "Batch through reassignment or retiming in the next planning cycle",
		PriorityDeferred: "Revisit if the schedule changes; low impact and no cheap fix",
	}
	var recs []Recommendation
	for _, p := range []Priority{PriorityDoFirst, PriorityPlanned, PriorityQuickWin, PriorityDeferred} {
		ids := byPriority[p]
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		recs = append(recs, Recommendation{Priority: p, Action: actions[p], ConflictIDs: ids})
	}
	return recs
}

func verdict(rep Report) string {
	switch {
	case rep.Blocking > 0:
		return fmt.Sprintf("blocked: %d conflict(s) must be resolved before publication", rep.Blocking)
	case rep.Conflicts > 0:
		return fmt.Sprintf("publishable: %d non-blocking conflict(s) remain", rep.Conflicts)
	default:
		return "clean: no conflicts detected"
	}
}
