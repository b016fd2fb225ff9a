package report

import (
	"fmt"
	"math"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/summary"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExecutiveSettings configures the cross-metric part of the summary. Engagement and
// Acquisition name the metrics (e.g. amplitude/sessions and appsflyer/installs) whose
// combined YoY changes are compared; either may be nil.
type ExecutiveSettings struct {
	Engagement  *FeedKey
	Acquisition *FeedKey
	// DiscrepancyPct is the reconciliation total difference worth investigating (default: 10)
	DiscrepancyPct float64
	// GrowthPct is the YoY change counted as growth or decline (default: 5)
	GrowthPct float64
	// Actions is the number of recommendations surfaced as actions (default: 2)
	Actions int
}

func DefaultExecutiveSettings() ExecutiveSettings {
	return ExecutiveSettings{
		DiscrepancyPct: 10,
		GrowthPct:      5,
		Actions:        2,
	}
}

func (s ExecutiveSettings) withDefaults() ExecutiveSettings {
	d := DefaultExecutiveSettings()
	if s.DiscrepancyPct == 0 {
		s.DiscrepancyPct = d.DiscrepancyPct
	}
	if s.GrowthPct == 0 {
		s.GrowthPct = d.GrowthPct
	}
	if s.Actions == 0 {
		s.Actions = d.Actions
	}
	return s
}

// executive derives the report-wide insights and actions from the computed metrics
// and reconciliations
func (b *Builder) executive(report *domain.WeeklyReport) domain.ExecutiveSummary {
	var out domain.ExecutiveSummary
	s := b.executiveSettings
	printer := message.NewPrinter(language.English)

	for _, rec := range report.Reconciliations {
		pct := rec.Total.DiffPct
		if rec.Error != "" || !pct.Valid || math.Abs(pct.Value) <= s.DiscrepancyPct {
			continue
		}
		direction := "more"
		if pct.Value < 0 {
			direction = "fewer"
		}
		out.Insights = append(out.Insights, printer.Sprintf(
			"%s tracks %.1f%% %s %s than %s - investigate tracking discrepancy",
			rec.SourceB, math.Abs(pct.Value), direction, rec.Metric, rec.SourceA))
	}

	engagement, okE := combinedYoY(report, s.Engagement)
	acquisition, okA := combinedYoY(report, s.Acquisition)
	if okE && okA {
		e, a := summary.MetricTitle(s.Engagement.Metric), summary.MetricTitle(s.Acquisition.Metric)
		switch {
		case engagement > s.GrowthPct && acquisition < -s.GrowthPct:
			out.Insights = append(out.Insights,
				fmt.Sprintf("%s growing while %s declining - focus on user acquisition", e, a))
		case acquisition > s.GrowthPct && engagement < -s.GrowthPct:
			out.Insights = append(out.Insights,
				fmt.Sprintf("%s increasing but %s declining - improve retention", a, e))
		}
	}

	for _, rec := range report.Reconciliations {
		for _, r := range rec.Recommendations {
			if len(out.Actions) == s.Actions {
				return out
			}
			out.Actions = append(out.Actions, r)
		}
	}
	return out
}

func combinedYoY(report *domain.WeeklyReport, key *FeedKey) (float64, bool) {
	if key == nil {
		return 0, false
	}
	m, ok := report.Metric(key.Source, key.Metric)
	if !ok || m.Failed() {
		return 0, false
	}
	c := m.Breakdown[domain.PlatformCombined].YoYChange
	return c.Value, c.Valid
}
