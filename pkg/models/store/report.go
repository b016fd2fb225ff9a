package store

import "time"

// Report is one stored WeeklyReport run. Payload is the report's JSON encoding.
type Report struct {
	ID          string
	Year        int
	Week        int
	RangeStart  time.Time
	RangeEnd    time.Time
	GeneratedAt time.Time
	Summary     string
	Payload     []byte
}

// MetricResult is one platform row of a stored metric breakdown
type MetricResult struct {
	ReportID  string
	Source    string
	Metric    string
	Kind      string
	Platform  string
	Current   *float64
	Previous  *float64
	YoYChange *float64
}

type ReportIdentity struct {
	Year int
	Week int
}
