package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleReport() *domain.WeeklyReport {
	return &domain.WeeklyReport{
		Week:         domain.ISOWeek{Year: 2025, Week: 29},
		Range:        domain.DateRange{Start: date(2025, 7, 14), End: date(2025, 7, 20)},
		PreviousYear: domain.YearEquivalent{Week: domain.ISOWeek{Year: 2024, Week: 29}},
		BaselineWeek: domain.ISOWeek{Year: 2025, Week: 28},
		Metrics: []domain.MetricReport{
			{
				Source: "amplitude",
				Metric: "sessions",
				Kind:   domain.KindVolume,
				Breakdown: domain.PlatformBreakdown{
					domain.PlatformApps:     {Current: domain.Some(4074), Previous: domain.Some(41014), YoYChange: domain.Some(-90.0668)},
					domain.PlatformWeb:      {Current: domain.Some(12808), Previous: domain.Some(174835), YoYChange: domain.Some(-92.6742)},
					domain.PlatformCombined: {Current: domain.Some(16882), Previous: domain.Some(215849), YoYChange: domain.Some(-92.1788)},
				},
				Baseline: domain.PlatformBreakdown{
					domain.PlatformCombined: {YoYChange: domain.Some(-93.5)},
				},
				Trend: map[domain.Platform]domain.Trend{
					domain.PlatformApps:     domain.TrendNoData,
					domain.PlatformCombined: domain.TrendImproved,
				},
			},
			{
				Source: "amplitude",
				Metric: "session_conversion",
				Kind:   domain.KindRate,
				Error:  "amplitude/session_conversion for 2025-W29: no combined segment",
			},
		},
		Reconciliations: []domain.Reconciliation{
			{
				Name:    "installs",
				SourceA: "appsflyer",
				SourceB: "ga4",
				Channels: []domain.ReconciliationResult{
					{Channel: "Paid Search", SourceA: domain.Some(638), SourceB: domain.Some(73), Diff: domain.Some(-565), DiffPct: domain.Some(-88.558)},
					{Channel: "Referral", SourceA: domain.Some(506), Unmatched: true},
				},
				Total:    domain.ReconciliationResult{Channel: "Total", SourceA: domain.Some(1144), SourceB: domain.Some(73), Diff: domain.Some(-1071), DiffPct: domain.Some(-93.6)},
				Insights: []string{"ga4 reports 1,071.0 fewer than appsflyer (-93.6%)"},
			},
		},
	}
}

func TestCompose_Text(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	out, err := c.Compose(sampleReport(), domain.DateRange{Start: date(2024, 7, 15), End: date(2024, 7, 21)}, FormatText)
	require.NoError(t, err)

	assert.Contains(t, out, "Week 29")
	assert.Contains(t, out, "2025-07-14 to 2025-07-20")
	assert.Contains(t, out, "Compared with Week 29, 2024 (2024-07-15 to 2024-07-21)")
	assert.Contains(t, out, "- Combined: 16,882.0 vs 215,849.0, -92.2% YoY; YoY trend improved vs Week 28 (-93.5%)")
	assert.Contains(t, out, "- Apps: 4,074.0 vs 41,014.0, -90.1% YoY; YoY trend vs Week 28: no data")
	assert.Contains(t, out, "Session Conversion (amplitude)\n- no data (computation failed:")
	assert.Contains(t, out, "| Paid Search | 638.0 | 73.0 | -565.0 | -88.6% |")
	assert.Contains(t, out, "| Referral | 506.0 | no data | no data | no data | unmatched")
	assert.Contains(t, out, "| Total | 1,144.0 | 73.0 | -1,071.0 | -93.6% |")
	assert.Contains(t, out, "- ga4 reports 1,071.0 fewer")
	assert.NotContains(t, out, "substituted")

	for _, line := range strings.Split(out, "\n") {
		assert.NotContains(t, line, ":  ")
		assert.False(t, strings.HasSuffix(line, ": "), "blank field in %q", line)
	}
}

func TestCompose_RecommendationsAndExecutive(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	report := sampleReport()
	report.Reconciliations[0].Recommendations = []string{"Map these sources to channels: tiktok"}
	report.Executive = domain.ExecutiveSummary{
		Insights: []string{"ga4 tracks 93.6% fewer installs than appsflyer - investigate tracking discrepancy"},
		Actions:  []string{"Map these sources to channels: tiktok"},
	}

	out, err := c.Compose(report, domain.DateRange{}, FormatText)
	require.NoError(t, err)

	assert.Contains(t, out, "- Recommendation: Map these sources to channels: tiktok")
	assert.Contains(t, out, "\nKey insights\n- ga4 tracks 93.6% fewer installs than appsflyer - investigate tracking discrepancy\n- Action: Map these sources to channels: tiktok\n")
}

func TestCompose_NoExecutiveSection(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	out, err := c.Compose(sampleReport(), domain.DateRange{}, FormatText)
	require.NoError(t, err)
	assert.NotContains(t, out, "Key insights")
}

func TestCompose_SubstitutedWeekIsStated(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	report := &domain.WeeklyReport{
		Week:         domain.ISOWeek{Year: 2026, Week: 53},
		Range:        domain.DateRange{Start: date(2026, 12, 28), End: date(2027, 1, 3)},
		PreviousYear: domain.YearEquivalent{Week: domain.ISOWeek{Year: 2025, Week: 52}, Substituted: true},
	}

	out, err := c.Compose(report, domain.DateRange{Start: date(2025, 12, 22), End: date(2025, 12, 28)}, FormatText)
	require.NoError(t, err)
	assert.Contains(t, out, "week 53 does not exist in 2025, week 52 used instead")
}

func TestCompose_Sheets(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	out, err := c.Compose(sampleReport(), domain.DateRange{}, FormatSheets)
	require.NoError(t, err)

	assert.Equal(t, "Week 29 (2025-07-14 to 2025-07-20):\nSessions: -92.2% YoY\nSession Conversion: no data\n", out)
}

func TestCompose_DoesNotModifyReport(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	report := sampleReport()
	before := len(report.Reconciliations[0].Channels)
	_, err = c.Compose(report, domain.DateRange{}, FormatText)
	require.NoError(t, err)
	assert.Len(t, report.Reconciliations[0].Channels, before)
}
