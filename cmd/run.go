package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flightworks/schedpipe/app"
	"github.com/flightworks/schedpipe/config"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/schedule"
	"github.com/flightworks/schedpipe/core/scheduler"
	"github.com/flightworks/schedpipe/infra/logger"
)

var (
	schedulePath string
	windowFrom   string
	windowTo     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline over a schedule file",
	RunE:  runPipeline,
}

func init() {
	runCmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "schedule file (yaml)")
	runCmd.Flags().StringVar(&windowFrom, "from", "", "window start (2006-01-02), defaults to today")
	runCmd.Flags().StringVar(&windowTo, "to", "", "window end, defaults to start plus the configured horizon")
	_ = runCmd.MarkFlagRequired("schedule")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sched, err := schedule.LoadFile(schedulePath)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	from, to, err := parseWindow(windowFrom, windowTo)
	if err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)
	svc.Store.Put(sched)

	if cfg.Scheduler.IntervalMinutes > 0 {
		return runRecurring(ctx, cmd, cfg, svc, sched, from, to)
	}
	res, runErr := svc.RunSchedule(ctx, sched, from, to)
	printReport(cmd, res)
	return runErr
}

// runRecurring revalidates the schedule on the configured interval until
// interrupted.
func runRecurring(ctx context.Context, cmd *cobra.Command, cfg *config.Config, svc *app.Service, sched *schedule.Schedule, from, to time.Time) error {
	s, err := scheduler.New(cfg.Scheduler, func(ctx context.Context) error {
		res, runErr := svc.RunSchedule(ctx, sched, from, to)
		printReport(cmd, res)
		return runErr
	}, logger.New("scheduler"))
	if err != nil {
		return err
	}
	if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func parseWindow(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = time.Parse(model.DateLayout, from); err != nil {
			return start, end, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.Parse(model.DateLayout, to); err != nil {
			return start, end, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return start, end, nil
}

func printReport(cmd *cobra.Command, res *app.RunResult) {
	if res == nil {
		return
	}
	out := cmd.OutOrStdout()
	run := res.Run
	fmt.Fprintf(out, "run %s: %s\n", run.ID, run.Status)
	fmt.Fprintf(out, "  occurrences: %d  issues: %d  conflicts: %d detected, %d resolved\n",
		run.Counts.Occurrences, run.Counts.Issues, run.Counts.ConflictsDetected, run.Counts.ConflictsResolved)
	for _, st := range run.Stages {
		fmt.Fprintf(out, "  stage %-8s %s\n", st.Stage, st.Status)
	}
	rep := res.Report
	fmt.Fprintf(out, "verdict: %s\n", rep.Verdict)
	for _, rc := range rep.RootCauses {
		fmt.Fprintf(out, "  root cause %s: %d conflict(s)\n", rc.Kind, rc.Count)
	}
	for _, rec := range rep.Recommendations {
		fmt.Fprintf(out, "  %s: %s %v\n", rec.Priority, rec.Action, rec.ConflictIDs)
	}
}
