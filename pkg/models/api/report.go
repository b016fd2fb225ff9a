package api

import "time"

// RawRow is one exported row of an analytics platform
type RawRow struct {
	Segment    string   `json:"segment" validate:"required"`
	Period     string   `json:"period,omitempty"`
	Value      float64  `json:"value"`
	Comparison *float64 `json:"comparison,omitempty"`
}

// Feed carries the rows of one metric of one source. Previous holds the
// prior-year export of manual comparison sources.
type Feed struct {
	Source   string   `json:"source" validate:"required"`
	Metric   string   `json:"metric" validate:"required"`
	Current  []RawRow `json:"current" validate:"dive"`
	Previous []RawRow `json:"previous,omitempty" validate:"dive"`
}

// ReportRequest is the raw-row bundle a report is built from.
// Week uses the "2025-W29" notation; empty selects the last full week.
type ReportRequest struct {
	Week  string     `json:"week,omitempty"`
	Now   *time.Time `json:"now,omitempty"`
	Feeds []Feed     `json:"feeds" validate:"required,min=1,dive"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Week struct {
	Year  int       `json:"year"`
	Week  int       `json:"week"`
	Label string    `json:"label"`
	Range DateRange `json:"range"`
}

type WeekResponse struct {
	Week
	PreviousYear Week `json:"previous_year"`
	// Substituted is set when week 53 had to fall back to week 52 of the prior year
	Substituted bool `json:"substituted"`
}

type PlatformValue struct {
	Platform  string   `json:"platform"`
	Current   *float64 `json:"current"`
	Previous  *float64 `json:"previous"`
	YoYChange *float64 `json:"yoy_change"`
	Trend     string   `json:"trend,omitempty"`
}

type Metric struct {
	Source      string          `json:"source"`
	Metric      string          `json:"metric"`
	Kind        string          `json:"kind"`
	Platforms   []PlatformValue `json:"platforms"`
	Error       string          `json:"error,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

type Channel struct {
	Channel   string   `json:"channel"`
	SourceA   *float64 `json:"source_a"`
	SourceB   *float64 `json:"source_b"`
	Diff      *float64 `json:"diff"`
	DiffPct   *float64 `json:"diff_pct"`
	Unmatched bool     `json:"unmatched,omitempty"`
	Category  string   `json:"category"`
}

type UnmappedSource struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PlatformVariance struct {
	ConsistentVariance bool   `json:"consistent_variance"`
	TypicalRange       string `json:"typical_range"`
	TrendAlignment     string `json:"growth_trend_alignment"`
}

type Reconciliation struct {
	Name     string           `json:"name"`
	SourceA  string           `json:"source_a"`
	SourceB  string           `json:"source_b"`
	Metric   string           `json:"metric"`
	Channels []Channel        `json:"channels"`
	Total    Channel          `json:"total"`
	Unmapped []UnmappedSource `json:"unmapped,omitempty"`
	Insights []string         `json:"insights,omitempty"`

	Recommendations []string          `json:"recommendations,omitempty"`
	Variance        *PlatformVariance `json:"variance,omitempty"`
	Error           string            `json:"error,omitempty"`
}

type Executive struct {
	Insights []string `json:"insights"`
	Actions  []string `json:"actions"`
}

type Report struct {
	ID              string           `json:"id"`
	Week            Week             `json:"week"`
	PreviousYear    Week             `json:"previous_year"`
	Substituted     bool             `json:"substituted"`
	BaselineWeek    string           `json:"baseline_week"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Metrics         []Metric         `json:"metrics"`
	Reconciliations []Reconciliation `json:"reconciliations"`
	Executive       Executive        `json:"executive"`
	Summary         string           `json:"summary"`
}

type ReportSummary struct {
	ID          string    `json:"id"`
	Week        string    `json:"week"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     string    `json:"summary"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
