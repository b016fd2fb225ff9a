package domain

import "fmt"

type MetricKind string

const (
	// KindVolume is a count-like metric; YoY delta is a relative percentage
	KindVolume MetricKind = "volume"
	// KindRate is a rate already expressed in percent; YoY delta is in percentage points
	KindRate MetricKind = "rate"
	// KindRatio is a per-user style ratio; YoY delta is relative but values do not sum
	KindRatio MetricKind = "ratio"
)

func ParseMetricKind(s string) (MetricKind, error) {
	switch k := MetricKind(s); k {
	case KindVolume, KindRate, KindRatio:
		return k, nil
	}
	return "", fmt.Errorf("unknown metric kind %q", s)
}

// Additive reports whether per-platform values can be summed into a total
func (k MetricKind) Additive() bool {
	return k == KindVolume
}

type Platform string

const (
	PlatformApps     Platform = "apps"
	PlatformWeb      Platform = "web"
	PlatformCombined Platform = "combined"
)

// Platforms lists platform keys in presentation order
var Platforms = []Platform{PlatformApps, PlatformWeb, PlatformCombined}

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case PlatformApps, PlatformWeb, PlatformCombined:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// RawMetricRow is one already-parsed row of a source export.
// Comparison holds the prior-year value when the source pairs it on the same row.
type RawMetricRow struct {
	Segment    string  `json:"segment"`
	Period     string  `json:"period"`
	Value      float64 `json:"value"`
	Comparison Number  `json:"comparison"`
}

// Pair is an unnormalized current/previous pair for one platform
type Pair struct {
	Current  Number `json:"current"`
	Previous Number `json:"previous"`
}

type StandardizedMetric struct {
	Current   Number `json:"current"`
	Previous  Number `json:"previous"`
	YoYChange Number `json:"yoy_change"`
}

// PlatformBreakdown maps platform keys to their metric values.
// A missing key means no data for that platform.
type PlatformBreakdown map[Platform]StandardizedMetric

// Diagnostic is a non-fatal observation made while normalizing a feed
type Diagnostic struct {
	Source  string `json:"source"`
	Metric  string `json:"metric"`
	Segment string `json:"segment,omitempty"`
	Reason  string `json:"reason"`
}

func (d Diagnostic) String() string {
	if d.Segment == "" {
		return fmt.Sprintf("%s/%s: %s", d.Source, d.Metric, d.Reason)
	}
	return fmt.Sprintf("%s/%s: segment %q: %s", d.Source, d.Metric, d.Segment, d.Reason)
}

type Trend string

const (
	TrendImproved Trend = "improved"
	TrendDeclined Trend = "declined"
	TrendFlat     Trend = "flat"
	TrendNoData   Trend = "no_data"
)
