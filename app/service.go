package app

import (
	"context"
	"fmt"
	"time"

	"github.com/flightworks/schedpipe/config"
	"github.com/flightworks/schedpipe/core/advisory"
	"github.com/flightworks/schedpipe/core/events"
	coremetrics "github.com/flightworks/schedpipe/core/metrics"
	"github.com/flightworks/schedpipe/core/pipeline"
	corepublish "github.com/flightworks/schedpipe/core/publish"
	"github.com/flightworks/schedpipe/core/refdata"
	"github.com/flightworks/schedpipe/core/schedule"
	"github.com/flightworks/schedpipe/infra/logger"
	"github.com/flightworks/schedpipe/infra/metrics"
	infrapublish "github.com/flightworks/schedpipe/infra/publish"
	"github.com/flightworks/schedpipe/internal/eventbus"
)

// Service wires the pipeline orchestrator to reference data, metrics,
// the event bus and downstream publication.
type Service struct {
	Orchestrator *pipeline.Orchestrator
	Analyzer     advisory.Analyzer
	Store        *schedule.Store

	publisher  *infrapublish.MQTTPublisher
	bus        *eventbus.TypedBus[events.Event]
	log        logger.Logger
	windowDays int
	promPort   int
}

// RunResult bundles a terminal pipeline run with its advisory report.
type RunResult struct {
	Run    *pipeline.PipelineRun
	Report advisory.Report
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	cfg.Logging.Apply()
	logg := logger.New("service")

	ref := refdata.NewStaticProvider()
	for _, f := range cfg.Refdata.Fixtures {
		if err := ref.LoadFile(f); err != nil {
			return nil, fmt.Errorf("refdata %s: %w", f, err)
		}
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.NewTyped[events.Event]()
	orch, err := pipeline.New(ref, sink, bus, logg, cfg.Pipeline.Orchestrator())
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	svc := &Service{
		Orchestrator: orch,
		Analyzer:     advisory.RuleAnalyzer{},
		Store:        schedule.NewStore(),
		bus:          bus,
		log:          logg,
		windowDays:   cfg.Pipeline.WindowDays,
		promPort:     cfg.Metrics.PrometheusPort,
	}
	if cfg.Publish.Enabled {
		pub, err := infrapublish.NewMQTTPublisher(cfg.Publish.MQTT)
		if err != nil {
			return nil, fmt.Errorf("publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Start launches background collaborators. It returns immediately; the
// collaborators stop when the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.promPort > 0 {
		go func() {
			if err := metrics.StartPromServer(ctx, fmt.Sprintf(":%d", s.promPort)); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Events exposes the run event bus for subscribers such as operator
// projections.
func (s *Service) Events() *eventbus.TypedBus[events.Event] { return s.bus }

// RunSchedule runs the full pipeline over the window and analyzes the
// result. A completed run is published downstream when publication is
// enabled; failed and cancelled runs never leave the process. The run
// error is returned alongside the result so callers can inspect the
// terminal run either way.
func (s *Service) RunSchedule(ctx context.Context, sched *schedule.Schedule, windowStart, windowEnd time.Time) (*RunResult, error) {
	if windowStart.IsZero() {
		windowStart = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if windowEnd.IsZero() {
		windowEnd = windowStart.AddDate(0, 0, s.windowDays)
	}

	run, runErr := s.Orchestrator.Run(ctx, sched, windowStart, windowEnd)

	report, err := s.Analyzer.Analyze(ctx, run.ID, run.Conflicts)
	if err != nil {
		s.log.Errorf("advisory: %v", err)
	}

	if s.publisher != nil && run.Status == pipeline.RunCompleted {
		summary := corepublish.RunSummary{
			RunID:             run.ID,
			ScheduleID:        run.ScheduleID,
			Version:           run.Version,
			Outcome:           run.Status.String(),
			WindowStart:       windowStart,
			WindowEnd:         windowEnd,
			Occurrences:       run.Counts.Occurrences,
			Issues:            run.Counts.Issues,
			ConflictsDetected: run.Counts.ConflictsDetected,
			ConflictsResolved: run.Counts.ConflictsResolved,
			CompletedAt:       run.FinishedAt,
		}
		if err := s.publisher.Publish(ctx, summary); err != nil {
			s.log.Errorf("publish run %s: %v", run.ID, err)
		}
	}

	return &RunResult{Run: run, Report: report}, runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.bus.Close()
	return nil
}
