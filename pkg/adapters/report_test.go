package adapters

import (
	"testing"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/api"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/models/store"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 {
	return &v
}

func TestMapReportRequestApiToInput(t *testing.T) {
	now := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)
	req := api.ReportRequest{
		Week: "2025-W29",
		Feeds: []api.Feed{
			{
				Source:  "ga4",
				Metric:  "sessions",
				Current: []api.RawRow{{Segment: "All Users", Period: "2025-07-14", Value: 10, Comparison: float(12)}},
			},
			{
				Source:   "amplitude",
				Metric:   "sessions",
				Current:  []api.RawRow{{Segment: "Apps", Period: "2025-07-14", Value: 4074}},
				Previous: []api.RawRow{{Segment: "Apps", Period: "2024-07-15", Value: 41014}},
			},
		},
	}

	in, err := MapReportRequestApiToInput(req, now)
	require.NoError(t, err)

	assert.Equal(t, now, in.Now)
	require.NotNil(t, in.Week)
	assert.Equal(t, domain.ISOWeek{Year: 2025, Week: 29}, *in.Week)

	ga4 := in.Feeds[report.FeedKey{Source: "ga4", Metric: "sessions"}]
	require.Len(t, ga4.Current, 1)
	assert.Equal(t, domain.Some(12), ga4.Current[0].Comparison)

	amp := in.Feeds[report.FeedKey{Source: "amplitude", Metric: "sessions"}]
	require.Len(t, amp.Previous, 1)
	assert.False(t, amp.Current[0].Comparison.Valid)
}

func TestMapReportRequestApiToInput_Errors(t *testing.T) {
	now := time.Now()

	_, err := MapReportRequestApiToInput(api.ReportRequest{Week: "week 29"}, now)
	assert.Error(t, err)

	feed := api.Feed{Source: "ga4", Metric: "sessions"}
	_, err = MapReportRequestApiToInput(api.ReportRequest{Feeds: []api.Feed{feed, feed}}, now)
	assert.ErrorContains(t, err, "duplicate feed ga4/sessions")
}

func TestMergeReportRequests(t *testing.T) {
	now := time.Now()
	merged := MergeReportRequests(
		api.ReportRequest{Feeds: []api.Feed{{Source: "a", Metric: "m"}}},
		api.ReportRequest{Week: "2025-W29", Now: &now, Feeds: []api.Feed{{Source: "b", Metric: "m"}}},
		api.ReportRequest{Week: "2025-W30"},
	)
	assert.Equal(t, "2025-W29", merged.Week)
	assert.Equal(t, &now, merged.Now)
	assert.Len(t, merged.Feeds, 2)
}

func sampleReport() *domain.WeeklyReport {
	return &domain.WeeklyReport{
		ID:           "r1",
		Week:         domain.ISOWeek{Year: 2025, Week: 29},
		Range:        domain.DateRange{Start: time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)},
		PreviousYear: domain.YearEquivalent{Week: domain.ISOWeek{Year: 2024, Week: 29}},
		BaselineWeek: domain.ISOWeek{Year: 2025, Week: 28},
		GeneratedAt:  time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC),
		Metrics: []domain.MetricReport{
			{
				Source: "amplitude",
				Metric: "sessions",
				Kind:   domain.KindVolume,
				Breakdown: domain.PlatformBreakdown{
					domain.PlatformWeb:      {Current: domain.Some(12808), Previous: domain.Some(174835), YoYChange: domain.Some(-92.67)},
					domain.PlatformCombined: {Current: domain.Some(16882), Previous: domain.None(), YoYChange: domain.None()},
				},
				Trend: map[domain.Platform]domain.Trend{domain.PlatformWeb: domain.TrendFlat},
			},
			{Source: "ga4", Metric: "purchases", Kind: domain.KindVolume, Error: "no rows supplied"},
		},
		Summary: "Week 29",
	}
}

func TestMapWeeklyReportDomainToApi(t *testing.T) {
	res, err := MapWeeklyReportDomainToApi(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "2025-W29", res.Week.Label)
	assert.Equal(t, "2025-07-14", res.Week.Range.Start)
	assert.Equal(t, "2024-07-15", res.PreviousYear.Range.Start)
	assert.Equal(t, "2025-W28", res.BaselineWeek)

	require.Len(t, res.Metrics, 2)
	platforms := res.Metrics[0].Platforms
	require.Len(t, platforms, 2)
	assert.Equal(t, "web", platforms[0].Platform)
	assert.Equal(t, "flat", platforms[0].Trend)
	assert.Equal(t, "combined", platforms[1].Platform)
	assert.Nil(t, platforms[1].YoYChange)
	assert.Equal(t, "no rows supplied", res.Metrics[1].Error)
}

func TestMapWeeklyReportDomainToApi_ReconciliationExtras(t *testing.T) {
	r := sampleReport()
	r.Reconciliations = []domain.Reconciliation{{
		Name:            "sessions",
		SourceA:         "amplitude",
		SourceB:         "ga4",
		Recommendations: []string{"Map these sources to channels: tiktok"},
		Variance: &domain.PlatformVariance{
			ConsistentVariance: true,
			TypicalRange:       domain.VarianceModerate,
			TrendAlignment:     domain.AlignmentDivergent,
		},
	}}
	r.Executive = domain.ExecutiveSummary{Actions: []string{"Map these sources to channels: tiktok"}}

	res, err := MapWeeklyReportDomainToApi(r)
	require.NoError(t, err)

	require.Len(t, res.Reconciliations, 1)
	rec := res.Reconciliations[0]
	assert.Equal(t, []string{"Map these sources to channels: tiktok"}, rec.Recommendations)
	require.NotNil(t, rec.Variance)
	assert.Equal(t, "moderate_variance", rec.Variance.TypicalRange)
	assert.Equal(t, "divergent_yoy_patterns", rec.Variance.TrendAlignment)
	assert.Empty(t, res.Executive.Insights)
	assert.NotNil(t, res.Executive.Insights)
	assert.Len(t, res.Executive.Actions, 1)
}

func TestMapWeeklyReportDomainToStore_RoundTrip(t *testing.T) {
	r := sampleReport()

	rec, metrics, err := MapWeeklyReportDomainToStore(r)
	require.NoError(t, err)
	assert.Equal(t, 2025, rec.Year)
	assert.Equal(t, 29, rec.Week)
	require.Len(t, metrics, 2)
	assert.Nil(t, metrics[1].Previous)

	restored, err := MapStoreReportToDomain(rec)
	require.NoError(t, err)
	assert.Equal(t, r.Week, restored.Week)
	assert.Equal(t, r.Metrics[0].Breakdown, restored.Metrics[0].Breakdown)

	baselines := MapStoreMetricResultsToBaselines(append(metrics, store.MetricResult{Source: "x", Metric: "y", Platform: "tv"}))
	require.Len(t, baselines, 1)
	sessions := baselines[report.FeedKey{Source: "amplitude", Metric: "sessions"}]
	assert.Equal(t, domain.Some(-92.67), sessions[domain.PlatformWeb].YoYChange)
	assert.False(t, sessions[domain.PlatformCombined].Previous.Valid)
}

func TestMapWeekToApiResponse_Substitution(t *testing.T) {
	_, err := MapWeekToApiResponse(domain.ISOWeek{Year: 2021, Week: 53})
	require.Error(t, err)

	res, err := MapWeekToApiResponse(domain.ISOWeek{Year: 2026, Week: 53})
	require.NoError(t, err)
	assert.True(t, res.Substituted)
	assert.Equal(t, 52, res.PreviousYear.Week)
	assert.Equal(t, "2026-12-28", res.Range.Start)
}
