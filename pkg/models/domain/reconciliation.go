package domain

type VarianceCategory string

const (
	VarianceVeryClose   VarianceCategory = "very_close_alignment"
	VarianceModerate    VarianceCategory = "moderate_variance"
	VarianceSignificant VarianceCategory = "significant_variance"
	VarianceMajor       VarianceCategory = "major_measurement_differences"
	VarianceUnknown     VarianceCategory = "unknown"
)

// TrendAlignment tells whether two sources agree on the direction of a YoY change
type TrendAlignment string

const (
	AlignmentSimilar   TrendAlignment = "similar_yoy_patterns"
	AlignmentDivergent TrendAlignment = "divergent_yoy_patterns"
	AlignmentNoData    TrendAlignment = "no_data"
)

// PlatformVariance characterizes two breakdowns of the same metric
type PlatformVariance struct {
	// ConsistentVariance is set when web differs by more than the configured share
	ConsistentVariance bool             `json:"consistent_variance"`
	TypicalRange       VarianceCategory `json:"typical_range"`
	TrendAlignment     TrendAlignment   `json:"growth_trend_alignment"`
}

// ReconciliationResult compares one channel across two sources.
// Diff is SourceB - SourceA and DiffPct is relative to SourceA.
type ReconciliationResult struct {
	Channel   string           `json:"channel"`
	SourceA   Number           `json:"source_a"`
	SourceB   Number           `json:"source_b"`
	Diff      Number           `json:"diff"`
	DiffPct   Number           `json:"diff_pct"`
	Unmatched bool             `json:"unmatched"`
	Category  VarianceCategory `json:"category"`
}

// UnmappedSource is a source-side label that the channel taxonomy does not cover
type UnmappedSource struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Reconciliation struct {
	Name     string                 `json:"name"`
	SourceA  string                 `json:"source_a"`
	SourceB  string                 `json:"source_b"`
	Metric   string                 `json:"metric"`
	Channels []ReconciliationResult `json:"channels"`
	Total    ReconciliationResult   `json:"total"`
	Unmapped []UnmappedSource       `json:"unmapped,omitempty"`
	Insights []string               `json:"insights,omitempty"`
	// Recommendations are follow-up actions in priority order
	Recommendations []string          `json:"recommendations,omitempty"`
	Variance        *PlatformVariance `json:"variance,omitempty"`
	Error           string            `json:"error,omitempty"`
}
