// Package pipeline sequences one run over one schedule version: expand,
// validate (all validators concurrently), detect, then the resolution
// loop, with a completion check at the end. The run is an explicit value
// passed through the stages; nothing is shared across runs, so multiple
// schedules may be processed concurrently by separate Orchestrator calls.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flightworks/schedpipe/core/detect"
	"github.com/flightworks/schedpipe/core/events"
	"github.com/flightworks/schedpipe/core/expand"
	"github.com/flightworks/schedpipe/core/index"
	"github.com/flightworks/schedpipe/core/logger"
	"github.com/flightworks/schedpipe/core/metrics"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/refdata"
	"github.com/flightworks/schedpipe/core/resolve"
	"github.com/flightworks/schedpipe/core/schedule"
	"github.com/flightworks/schedpipe/core/validate"
	"github.com/flightworks/schedpipe/internal/eventbus"
)

// Config tunes one orchestrator. Zero values select defaults.
type Config struct {
	// Tolerance is the airport bucketing window of the resource index.
	Tolerance time.Duration
	// MaxAttempts bounds solution attempts per conflict.
	MaxAttempts int
	// StageRetries bounds retries of a stage that failed transiently.
	StageRetries int
	// Backoff is the initial delay between stage retries; it doubles
	// per retry.
	Backoff time.Duration
	// RetimeStep is the schedule shift used when a retiming solution
	// has no deficit to derive one from.
	RetimeStep time.Duration
}

func (c *Config) withDefaults() {
	if c.Tolerance <= 0 {
		c.Tolerance = 5 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = resolve.DefaultMaxAttempts
	}
	if c.StageRetries < 0 {
		c.StageRetries = 0
	}
	if c.Backoff <= 0 {
		c.Backoff = 200 * time.Millisecond
	}
	if c.RetimeStep <= 0 {
		c.RetimeStep = 30 * time.Minute
	}
}

// Orchestrator drives pipeline runs. It is stateless between runs; every
// Run call owns its occurrence snapshot and conflict set.
type Orchestrator struct {
	ref   refdata.Provider
	sink  metrics.MetricsSink
	bus   *eventbus.TypedBus[events.Event]
	log   logger.Logger
	cfg   Config
	now   func() time.Time
	newID func() string
}

// New builds an Orchestrator. The reference-data provider is required;
// sink, bus and log may be nil and default to no-ops.
func New(ref refdata.Provider, sink metrics.MetricsSink, bus *eventbus.TypedBus[events.Event], log logger.Logger, cfg Config) (*Orchestrator, error) {
	if ref == nil || log == nil {
		return nil, fmt.Errorf("pipeline: nil parameter provided to New")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	cfg.withDefaults()
	return &Orchestrator{
		ref:   ref,
		sink:  sink,
		bus:   bus,
		log:   log,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Run executes the full pipeline for one schedule version over the given
// window. The returned run is always non-nil and terminal; the error
// reports why a run failed or was cancelled.
func (o *Orchestrator) Run(ctx context.Context, sched *schedule.Schedule, windowStart, windowEnd time.Time) (*PipelineRun, error) {
	run := newRun(o.newID(), sched.ID, sched.Version, o.now())
	o.log.Infof("run %s: schedule %s v%d, window %s..%s",
		run.ID, sched.ID, sched.Version,
		windowStart.Format(model.DateLayout), windowEnd.Format(model.DateLayout))
	o.setRunStatus(run, RunRunning)

	var idx *index.ResourceIndex
	var machine *resolve.Machine

	err := o.runStage(ctx, run, StageExpand, func() error {
		occs, issues, err := expand.Window(sched.Templates, windowStart, windowEnd)
		if err != nil {
			return err
		}
		run.Occurrences = occs
		run.Issues = issues
		run.Counts.Occurrences = len(occs)
		idx = index.Build(occs, o.cfg.Tolerance)
		return nil
	})
	if err != nil {
		return o.finish(run, err)
	}

	err = o.runStage(ctx, run, StageValidate, func() error {
		issues, err := o.validateAll(ctx, run.Occurrences, idx)
		if err != nil {
			return err
		}
		run.Issues = append(run.Issues, issues...)
		run.Counts.Issues = len(run.Issues)
		return nil
	})
	if err != nil {
		return o.finish(run, err)
	}

	err = o.runStage(ctx, run, StageDetect, func() error {
		run.Conflicts = detect.Detect(run.Issues, idx)
		run.Counts.ConflictsDetected = len(run.Conflicts)
		o.recordConflicts(run)
		return nil
	})
	if err != nil {
		return o.finish(run, err)
	}

	err = o.runStage(ctx, run, StageResolve, func() error {
		machine = resolve.NewMachine(run.Occurrences, o.cfg.Tolerance, o.ref, o.cfg.MaxAttempts, o.log)
		machine.Register(run.Conflicts)
		if err := o.resolveAll(ctx, run, machine); err != nil {
			return err
		}
		run.Occurrences = machine.Occurrences()
		run.Counts.Occurrences = len(run.Occurrences)
		return nil
	})
	if err != nil {
		if machine != nil && errors.Is(err, model.ErrInvariantViolation) {
			machine.Rollback()
			run.Occurrences = machine.Occurrences()
		}
		return o.finish(run, err)
	}

	run.BlockingConflicts = blocking(run.Conflicts)
	if len(run.BlockingConflicts) > 0 {
		return o.finish(run, fmt.Errorf("%d blocking conflict(s) unresolved", len(run.BlockingConflicts)))
	}
	return o.finish(run, nil)
}

// runStage executes one stage with transient retry and cooperative
// cancellation, tracking its status and timing on the run.
func (o *Orchestrator) runStage(ctx context.Context, run *PipelineRun, s Stage, fn func() error) error {
	sr := run.stage(s)
	if err := ctx.Err(); err != nil {
		sr.Status = StageSkipped
		return fmt.Errorf("%w: before %s: %v", ErrRunCancelled, s, err)
	}

	sr.Status = StageRunning
	sr.StartedAt = o.now()
	o.publish(events.StageEvent{RunID: run.ID, Stage: s.String(), Status: sr.Status.String(), At: sr.StartedAt})

	var err error
	backoff := o.cfg.Backoff
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !o.retryable(err) || attempt >= o.cfg.StageRetries {
			break
		}
		o.log.Warnf("run %s: stage %s attempt %d failed: %v, retrying in %s",
			run.ID, s, attempt+1, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			err = fmt.Errorf("%w: during %s: %v", ErrRunCancelled, s, ctx.Err())
		}
		if errors.Is(err, ErrRunCancelled) {
			break
		}
		backoff *= 2
	}

	sr.FinishedAt = o.now()
	if err != nil {
		sr.Status = StageFailed
		sr.Err = err.Error()
	} else {
		sr.Status = StageCompleted
	}
	dur := sr.FinishedAt.Sub(sr.StartedAt)
	stageLatency.WithLabelValues(s.String(), sr.Status.String()).Observe(dur.Seconds())
	if rec, ok := o.sink.(metrics.StageRecorder); ok {
		_ = rec.RecordStage(metrics.StageRecord{
			RunID:    run.ID,
			Stage:    s.String(),
			Status:   sr.Status.String(),
			Duration: dur,
			Time:     sr.FinishedAt,
		})
	}
	o.publish(events.StageEvent{RunID: run.ID, Stage: s.String(), Status: sr.Status.String(), Err: sr.Err, At: sr.FinishedAt})
	return err
}

// retryable reports whether a stage error is worth another attempt.
// Invariant violations and cancellations never are; template-level
// rejections are deterministic and never are either.
func (o *Orchestrator) retryable(err error) bool {
	switch {
	case errors.Is(err, ErrRunCancelled),
		errors.Is(err, model.ErrInvariantViolation),
		errors.Is(err, model.ErrInvalidPattern),
		errors.Is(err, model.ErrInvalidDateRange):
		return false
	}
	return true
}

// validateAll fans the validator set out over the immutable snapshot and
// aggregates per category, keeping category order deterministic.
func (o *Orchestrator) validateAll(ctx context.Context, occs []model.ScheduleInstance, idx *index.ResourceIndex) ([]model.Issue, error) {
	validators := validate.All()
	results := make([][]model.Issue, len(validators))

	var wg sync.WaitGroup
	for i, v := range validators {
		wg.Add(1)
		go func(i int, v validate.Validator) {
			defer wg.Done()
			results[i] = v.Validate(ctx, occs, idx, o.ref)
			validatorsRun.WithLabelValues(v.Category().String()).Inc()
		}(i, v)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: validation discarded: %v", ErrRunCancelled, err)
	}
	var issues []model.Issue
	for _, r := range results {
		issues = append(issues, r...)
	}
	return issues, nil
}

// resolveAll walks the conflict list once, driving each pending conflict
// through the state machine. Fresh conflicts appended by effective fixes
// are picked up by the same walk.
func (o *Orchestrator) resolveAll(ctx context.Context, run *PipelineRun, machine *resolve.Machine) error {
	for i := 0; i < len(run.Conflicts); i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: resolution interrupted: %v", ErrRunCancelled, err)
		}
		c := run.Conflicts[i]
		if c.Status != model.StatusPending {
			continue
		}
		fresh, err := o.resolveOne(ctx, &c, machine)
		run.Conflicts[i] = c
		o.recordTransitions(run, c)
		if err != nil {
			return err
		}
		if c.Status == model.StatusResolved {
			run.Counts.ConflictsResolved++
		}
		for _, nc := range fresh {
			conflictsDetected.WithLabelValues(nc.Type.String()).Inc()
			o.publish(events.ConflictEvent{RunID: run.ID, Conflict: nc, At: o.now()})
			run.Conflicts = append(run.Conflicts, nc)
			run.Counts.ConflictsDetected++
		}
	}
	return nil
}

// resolveOne tries the conflict's proposed solutions in order until one
// is effective or the attempt budget runs out. Only invariant violations
// propagate; everything else lands in the conflict's terminal status.
func (o *Orchestrator) resolveOne(ctx context.Context, c *model.Conflict, machine *resolve.Machine) ([]model.Conflict, error) {
	if err := machine.Begin(c, "pipeline"); err != nil {
		return nil, err
	}
	for c.Status == model.StatusInProgress {
		advanced := false
		for si := range c.Solutions {
			if c.Status != model.StatusInProgress {
				break
			}
			if !o.plan(c, &c.Solutions[si], machine.Index()) {
				continue
			}
			fresh, err := machine.Apply(ctx, c, c.Solutions[si].ID)
			if err == nil {
				return fresh, nil
			}
			advanced = true
			switch {
			case errors.Is(err, model.ErrInvariantViolation):
				return nil, err
			case errors.Is(err, resolve.ErrResolutionExhausted):
				return nil, nil
			case errors.Is(err, resolve.ErrIneffectiveSolution):
				continue
			default:
				o.log.Warnf("conflict %s: solution %s not applicable: %v", c.ID, c.Solutions[si].ID, err)
				continue
			}
		}
		if !advanced {
			if err := machine.CannotResolve(c, "no applicable solution"); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

// plan fills in the concrete parameters a proposed solution needs before
// it can be applied. It reports false when no viable parameters exist.
func (o *Orchestrator) plan(c *model.Conflict, sol *model.Solution, idx *index.ResourceIndex) bool {
	switch sol.Kind {
	case model.SolutionReassignTail:
		tail, ok := o.spareTail(c, idx)
		if !ok {
			return false
		}
		sol.NewTail = tail
		return true
	case model.SolutionRetime:
		sol.Shift = o.planShift(c)
		return true
	default:
		return true
	}
}

// spareTail picks the first known tail, in sorted order, that is neither
// involved in the conflict nor flying during any conflicted window.
func (o *Orchestrator) spareTail(c *model.Conflict, idx *index.ResourceIndex) (string, bool) {
	involved := make(map[string]bool)
	var windows []model.ScheduleInstance
	for _, id := range c.Occurrences {
		occ, ok := idx.Occurrence(id)
		if !ok {
			continue
		}
		involved[occ.Template.Tail] = true
		windows = append(windows, occ)
	}

	tails := idx.Tails()
	sort.Strings(tails)
	for _, tail := range tails {
		if involved[tail] {
			continue
		}
		busy := false
		for _, leg := range idx.ByTail(tail) {
			for _, w := range windows {
				if leg.Overlaps(w) {
					busy = true
					break
				}
			}
			if busy {
				break
			}
		}
		if !busy {
			return tail, true
		}
	}
	return "", false
}

// planShift derives the retiming delta from the deficit the underlying
// issues report, plus a margin, falling back to the configured step.
func (o *Orchestrator) planShift(c *model.Conflict) time.Duration {
	deficit := 0
	for _, is := range c.Issues {
		actual, okA := fieldInt(is.Fields, "turnaround_minutes")
		required, okR := fieldInt(is.Fields, "minimum_required")
		if !okA {
			actual, okA = fieldInt(is.Fields, "connection_minutes")
			required, okR = fieldInt(is.Fields, "required_minutes")
		}
		if okA && okR && required-actual > deficit {
			deficit = required - actual
		}
	}
	if deficit > 0 {
		return time.Duration(deficit+15) * time.Minute
	}
	return o.cfg.RetimeStep
}

func fieldInt(fields map[string]any, key string) (int, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// finish sets the run's terminal status and emits the closing telemetry.
func (o *Orchestrator) finish(run *PipelineRun, err error) (*PipelineRun, error) {
	run.FinishedAt = o.now()
	switch {
	case err == nil:
		o.setRunStatus(run, RunCompleted)
	case errors.Is(err, ErrRunCancelled):
		run.Err = err.Error()
		o.setRunStatus(run, RunCancelled)
	default:
		run.Err = err.Error()
		o.setRunStatus(run, RunFailed)
	}

	outcome := run.Status.String()
	runsByOutcome.WithLabelValues(outcome).Inc()
	blockingGauge.Set(float64(len(run.BlockingConflicts)))
	_ = o.sink.RecordRun(metrics.RunRecord{
		RunID:             run.ID,
		ScheduleID:        run.ScheduleID,
		Version:           run.Version,
		Outcome:           outcome,
		Duration:          run.FinishedAt.Sub(run.StartedAt),
		Occurrences:       run.Counts.Occurrences,
		Issues:            run.Counts.Issues,
		ConflictsDetected: run.Counts.ConflictsDetected,
		ConflictsResolved: run.Counts.ConflictsResolved,
		Time:              run.FinishedAt,
	})
	if err != nil {
		o.log.Errorf("run %s %s at stage %q: %v", run.ID, outcome, run.FailedStage(), err)
		return run, fmt.Errorf("run %s: %w", run.ID, err)
	}
	o.log.Infof("run %s completed: %d occurrence(s), %d conflict(s) detected, %d resolved",
		run.ID, run.Counts.Occurrences, run.Counts.ConflictsDetected, run.Counts.ConflictsResolved)
	return run, nil
}

func (o *Orchestrator) setRunStatus(run *PipelineRun, s RunStatus) {
	run.Status = s
	o.publish(events.RunEvent{
		RunID:      run.ID,
		ScheduleID: run.ScheduleID,
		Version:    run.Version,
		Status:     s.String(),
		At:         o.now(),
	})
}

func (o *Orchestrator) recordConflicts(run *PipelineRun) {
	for _, c := range run.Conflicts {
		conflictsDetected.WithLabelValues(c.Type.String()).Inc()
		o.publish(events.ConflictEvent{RunID: run.ID, Conflict: c, At: o.now()})
	}
	if rec, ok := o.sink.(metrics.ConflictRecorder); ok && len(run.Conflicts) > 0 {
		recs := make([]metrics.ConflictRecord, 0, len(run.Conflicts))
		for _, c := range run.Conflicts {
			recs = append(recs, metrics.ConflictRecord{
				RunID:       run.ID,
				ConflictID:  c.ID,
				Type:        c.Type.String(),
				Severity:    c.Severity.String(),
				ImpactScore: c.ImpactScore,
				Time:        o.now(),
			})
		}
		_ = rec.RecordConflicts(recs)
	}
}

// recordTransitions emits one event and record per status change the
// resolution workflow appended. Conflicts enter the walk pending with an
// empty history, so every entry belongs to this run.
func (o *Orchestrator) recordTransitions(run *PipelineRun, c model.Conflict) {
	for _, tr := range c.History {
		o.publish(events.ResolutionEvent{RunID: run.ID, ConflictID: c.ID, From: tr.From, To: tr.To, At: tr.At})
		if rec, ok := o.sink.(metrics.ResolutionRecorder); ok {
			_ = rec.RecordResolution(metrics.ResolutionRecord{
				RunID:      run.ID,
				ConflictID: c.ID,
				From:       tr.From.String(),
				To:         tr.To.String(),
				Time:       tr.At,
			})
		}
	}
}

func (o *Orchestrator) publish(e events.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
