package domain

import "time"

// MetricReport is the outcome of one metric of one source for the report week.
// Baseline holds the same metric for the preceding week and feeds Trend.
type MetricReport struct {
	Source      string             `json:"source"`
	Metric      string             `json:"metric"`
	Kind        MetricKind         `json:"kind"`
	Breakdown   PlatformBreakdown  `json:"breakdown,omitempty"`
	Baseline    PlatformBreakdown  `json:"baseline,omitempty"`
	Trend       map[Platform]Trend `json:"trend,omitempty"`
	Error       string             `json:"error,omitempty"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty"`
}

func (m MetricReport) Failed() bool {
	return m.Error != ""
}

// ExecutiveSummary holds cross-metric observations and the actions to take first
type ExecutiveSummary struct {
	Insights []string `json:"insights,omitempty"`
	Actions  []string `json:"actions,omitempty"`
}

// WeeklyReport is built once per run and not modified after the summary is composed
type WeeklyReport struct {
	ID              string           `json:"id"`
	Week            ISOWeek          `json:"week"`
	Range           DateRange        `json:"range"`
	PreviousYear    YearEquivalent   `json:"previous_year"`
	BaselineWeek    ISOWeek          `json:"baseline_week"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Metrics         []MetricReport   `json:"metrics"`
	Reconciliations []Reconciliation `json:"reconciliations,omitempty"`
	Executive       ExecutiveSummary `json:"executive"`
	Summary         string           `json:"summary"`
}

// Metric returns the report entry for a source metric
func (r *WeeklyReport) Metric(source, metric string) (MetricReport, bool) {
	for _, m := range r.Metrics {
		if m.Source == source && m.Metric == metric {
			return m, true
		}
	}
	return MetricReport{}, false
}
