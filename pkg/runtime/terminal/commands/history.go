package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/weekly-pulse/pkg/services/history"
	"github.com/de-tools/weekly-pulse/pkg/services/week"
	"github.com/de-tools/weekly-pulse/pkg/store/duckdb"
	reportstore "github.com/de-tools/weekly-pulse/pkg/store/duckdb/report"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	dbPath string
	week   string
	limit  int
}

func NewHistoryCmd() *cobra.Command {
	hc := &HistoryCmd{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored reports",
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.dbPath, "db", "", "DuckDB file keeping report history")
	cmd.Flags().StringVar(&hc.week, "week", "", "Print the latest stored summary of an ISO week, e.g. 2025-W29")
	cmd.Flags().IntVar(&hc.limit, "limit", 20, "Number of reports to list")

	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: hc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	store, err := reportstore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}
	svc := history.NewService(store)
	out := cmd.OutOrStdout()

	if hc.week != "" {
		w, err := week.Parse(hc.week)
		if err != nil {
			return err
		}
		r, err := svc.Get(ctx, w)
		if errors.Is(err, reportstore.ErrNotFound) {
			fmt.Fprintf(out, "No report stored for %s\n", w)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.Summary)
		return nil
	}

	reports, err := svc.List(ctx, hc.limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports stored")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(out, "%s  %s  generated %s\n", r.Week, r.ID, r.GeneratedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
