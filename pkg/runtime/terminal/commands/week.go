package commands

import (
	"fmt"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/week"
	"github.com/spf13/cobra"
)

type WeekCmd struct {
	year int
	week int
	now  func() time.Time
}

func NewWeekCmd(now func() time.Time) *cobra.Command {
	wc := &WeekCmd{now: now}
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Resolve an ISO week to its date range and previous-year equivalent",
		RunE:  wc.run,
	}

	cmd.Flags().IntVar(&wc.year, "year", 0, "ISO year (default: year of the last full week)")
	cmd.Flags().IntVar(&wc.week, "week", 0, "ISO week number (default: last full week)")

	return cmd
}

func (wc *WeekCmd) target() (domain.ISOWeek, error) {
	if wc.week == 0 {
		return week.CurrentWeek(wc.now()), nil
	}
	w := domain.ISOWeek{Year: wc.year, Week: wc.week}
	if w.Year == 0 {
		w.Year = week.CurrentWeek(wc.now()).Year
	}
	return w, week.Validate(w)
}

func (wc *WeekCmd) run(cmd *cobra.Command, _ []string) error {
	w, err := wc.target()
	if err != nil {
		return err
	}

	res, err := adapters.MapWeekToApiResponse(w)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Week:          %s (%s to %s)\n", res.Label, res.Range.Start, res.Range.End)
	fmt.Fprintf(out, "Previous year: %s (%s to %s)\n", res.PreviousYear.Label, res.PreviousYear.Range.Start, res.PreviousYear.Range.End)
	if res.Substituted {
		fmt.Fprintf(out, "Note: %d has no week %d; week %d is used instead\n", res.PreviousYear.Year, w.Week, res.PreviousYear.Week)
	}
	return nil
}
