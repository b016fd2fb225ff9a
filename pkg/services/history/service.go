package history

import (
	"context"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/api"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/models/store"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	reportstore "github.com/de-tools/weekly-pulse/pkg/store/duckdb/report"
	"github.com/rs/zerolog"
)

// Service records built reports and serves them back, including as the
// week-over-week trend baseline of later builds
type Service interface {
	report.History
	Save(ctx context.Context, r *domain.WeeklyReport) error
	Get(ctx context.Context, w domain.ISOWeek) (*domain.WeeklyReport, error)
	List(ctx context.Context, limit int) ([]api.ReportSummary, error)
}

type historyService struct {
	store reportstore.Store
}

func NewService(s reportstore.Store) Service {
	return &historyService{store: s}
}

func (h *historyService) Save(ctx context.Context, r *domain.WeeklyReport) error {
	rec, metrics, err := adapters.MapWeeklyReportDomainToStore(r)
	if err != nil {
		return err
	}
	if err := h.store.Save(ctx, rec, metrics); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("report_id", r.ID).
		Str("week", r.Week.String()).
		Int("metric_rows", len(metrics)).
		Msg("report stored")
	return nil
}

// Get returns the latest stored report of a week, or reportstore.ErrNotFound
func (h *historyService) Get(ctx context.Context, w domain.ISOWeek) (*domain.WeeklyReport, error) {
	rec, err := h.store.GetLatest(ctx, store.ReportIdentity{Year: w.Year, Week: w.Week})
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreReportToDomain(*rec)
}

func (h *historyService) List(ctx context.Context, limit int) ([]api.ReportSummary, error) {
	reports, err := h.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]api.ReportSummary, 0, len(reports))
	for _, r := range reports {
		out = append(out, adapters.MapStoreReportToApiSummary(r))
	}
	return out, nil
}

func (h *historyService) Baselines(ctx context.Context, w domain.ISOWeek) (map[report.FeedKey]domain.PlatformBreakdown, error) {
	results, err := h.store.GetMetrics(ctx, store.ReportIdentity{Year: w.Year, Week: w.Week})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return adapters.MapStoreMetricResultsToBaselines(results), nil
}
