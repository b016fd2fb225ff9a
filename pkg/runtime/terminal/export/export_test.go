package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *domain.WeeklyReport {
	return &domain.WeeklyReport{
		ID:           "r1",
		Week:         domain.ISOWeek{Year: 2025, Week: 29},
		Range:        domain.DateRange{Start: time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)},
		PreviousYear: domain.YearEquivalent{Week: domain.ISOWeek{Year: 2024, Week: 29}},
		Metrics: []domain.MetricReport{
			{
				Source: "amplitude",
				Metric: "sessions",
				Kind:   domain.KindVolume,
				Breakdown: domain.PlatformBreakdown{
					domain.PlatformApps:     {Current: domain.Some(4074), Previous: domain.Some(41014), YoYChange: domain.Some(-90.0668)},
					domain.PlatformCombined: {Current: domain.Some(16882), Previous: domain.None(), YoYChange: domain.None()},
				},
				Trend: map[domain.Platform]domain.Trend{domain.PlatformApps: domain.TrendImproved},
			},
			{Source: "ga4", Metric: "session_conversion", Kind: domain.KindRate, Error: "no rows supplied"},
		},
		Reconciliations: []domain.Reconciliation{
			{
				Name:    "installs",
				SourceA: "appsflyer",
				SourceB: "ga4",
				Channels: []domain.ReconciliationResult{
					{Channel: "Paid Search", SourceA: domain.Some(638), SourceB: domain.Some(73), Diff: domain.Some(-565), DiffPct: domain.Some(-88.558), Category: domain.VarianceMajor},
				},
				Total:    domain.ReconciliationResult{Channel: "Total", SourceA: domain.Some(638), SourceB: domain.Some(73), Diff: domain.Some(-565), DiffPct: domain.Some(-88.558)},
				Insights: []string{"ga4 reports 565.0 fewer than appsflyer (-88.6%)"},
			},
		},
		Summary: "Week 29, 2025 (2025-07-14 to 2025-07-20)\nSessions (amplitude)",
	}
}

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Weekly Report 2025-W29 (2025-07-14 to 2025-07-20)")
	assert.Contains(t, out, "=== Sessions (amplitude) ===")
	assert.Contains(t, out, "| Apps ")
	assert.Contains(t, out, "| 4,074.0 ")
	assert.Contains(t, out, "| -90.1% ")
	assert.Contains(t, out, "| improved ")
	assert.Contains(t, out, "| no_data ")
	assert.Contains(t, out, "computation failed: no rows supplied")
	assert.Contains(t, out, "| Paid Search ")
	assert.Contains(t, out, "| -565.0 ")
	assert.Contains(t, out, "- ga4 reports 565.0 fewer")
}

func TestReporter_HandleRecommendationsAndExecutive(t *testing.T) {
	r := sampleReport()
	r.Reconciliations[0].Recommendations = []string{"Map these sources to channels: tiktok"}
	r.Executive = domain.ExecutiveSummary{
		Insights: []string{"ga4 tracks 88.6% fewer installs than appsflyer - investigate tracking discrepancy"},
		Actions:  []string{"Map these sources to channels: tiktok"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(r))

	out := buf.String()
	assert.Contains(t, out, "* Map these sources to channels: tiktok\n")
	assert.Contains(t, out, "=== Key Insights ===\n- ga4 tracks 88.6% fewer installs")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, MetricsSheet, ReconciliationsSheet}, f.GetSheetList())

	summaryRows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, "Week 29, 2025 (2025-07-14 to 2025-07-20)", summaryRows[0][0])

	rows, err := f.GetRows(MetricsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Platform", rows[0][3])
	assert.Equal(t, "apps", rows[1][3])
	assert.Equal(t, "4074", rows[1][4])
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "no rows supplied", rows[3][8])

	recRows, err := f.GetRows(ReconciliationsSheet)
	require.NoError(t, err)
	require.Len(t, recRows, 3)
	assert.Equal(t, "Paid Search", recRows[1][1])
	assert.Equal(t, "Total", recRows[2][1])
}
