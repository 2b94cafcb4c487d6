package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flightworks/schedpipe/core/expand"
	"github.com/flightworks/schedpipe/core/model"
	"github.com/flightworks/schedpipe/core/schedule"
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Print the occurrences a schedule expands to",
	RunE:  runExpand,
}

func init() {
	expandCmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "schedule file (yaml)")
	expandCmd.Flags().StringVar(&windowFrom, "from", "", "window start (2006-01-02)")
	expandCmd.Flags().StringVar(&windowTo, "to", "", "window end")
	_ = expandCmd.MarkFlagRequired("schedule")
	_ = expandCmd.MarkFlagRequired("from")
	_ = expandCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	sched, err := schedule.LoadFile(schedulePath)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	from, to, err := parseWindow(windowFrom, windowTo)
	if err != nil {
		return err
	}

	occs, issues, err := expand.Window(sched.Templates, from, to)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, o := range occs {
		fmt.Fprintf(out, "%s %s %s-%s %s..%s %s\n",
			o.Date.Format(model.DateLayout), o.Template.Designator(),
			o.Template.Origin, o.Template.Destination,
			o.Departure.Format("15:04"), o.Arrival.Format("15:04"), o.Template.Tail)
	}
	for _, is := range issues {
		fmt.Fprintf(out, "issue %s: %s\n", is.Kind, is.Description)
	}
	fmt.Fprintf(out, "%d occurrence(s), %d expansion issue(s)\n", len(occs), len(issues))
	return nil
}
