package domain

import "fmt"

// InvalidWeekError is returned for week numbers outside the ISO range of a year
type InvalidWeekError struct {
	Year    int
	Week    int
	MaxWeek int
}

func (e *InvalidWeekError) Error() string {
	return fmt.Sprintf("invalid ISO week %d for year %d: must be between 1 and %d", e.Week, e.Year, e.MaxWeek)
}

// MissingPeriodError is returned when a manual-comparison feed has no column for the requested week
type MissingPeriodError struct {
	Source string
	Metric string
	Feed   string // "current" or "previous"
	Label  string
}

func (e *MissingPeriodError) Error() string {
	return fmt.Sprintf("%s feed of %s/%s has no period %s", e.Feed, e.Source, e.Metric, e.Label)
}

// NonAdditiveMetricError is returned when a combined total of a non-additive metric
// would have to be derived arithmetically
type NonAdditiveMetricError struct {
	Source string
	Metric string
	Kind   MetricKind
}

func (e *NonAdditiveMetricError) Error() string {
	return fmt.Sprintf("%s metric %s/%s has no combined segment and cannot be summed across platforms",
		e.Kind, e.Source, e.Metric)
}

// MetricError attaches source, metric and week context to a failed metric computation
type MetricError struct {
	Source string
	Metric string
	Week   ISOWeek
	Err    error
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("%s/%s for %s: %v", e.Source, e.Metric, e.Week, e.Err)
}

func (e *MetricError) Unwrap() error {
	return e.Err
}
