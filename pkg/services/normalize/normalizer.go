package normalize

import (
	"fmt"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// SegmentMap is the closed set of segment labels a source emits, keyed by exact label
type SegmentMap map[string]domain.Platform

// Source is the normalization profile of one upstream platform
type Source struct {
	Name       string
	Capability ComparisonCapability
	Segments   SegmentMap
}

// Feed holds the raw rows of one metric. Previous is only read for manual sources.
type Feed struct {
	Current  []domain.RawMetricRow
	Previous []domain.RawMetricRow
}

// Target names the periods to extract: the report week and its prior-year equivalent.
// A Strict target only accepts rows labelled with its exact period.
type Target struct {
	Current  domain.DateRange
	Previous domain.DateRange
	Strict   bool
}

type Result struct {
	Values      map[domain.Platform]domain.Pair
	Diagnostics []domain.Diagnostic
}

// Normalizer maps the raw rows of one metric to per-platform pairs
type Normalizer interface {
	Normalize(metric string, feed Feed, target Target) (Result, error)
}

// New returns the normalizer matching the source's comparison capability
func New(src Source) (Normalizer, error) {
	if src.Name == "" {
		return nil, fmt.Errorf("source name cannot be empty")
	}
	if len(src.Segments) == 0 {
		return nil, fmt.Errorf("source %q has no segment mapping", src.Name)
	}

	switch src.Capability {
	case NativeComparison:
		return &nativeNormalizer{src: src}, nil
	case ManualComparison:
		return &manualNormalizer{src: src}, nil
	default:
		return nil, fmt.Errorf("source %q: unknown comparison capability %q", src.Name, src.Capability)
	}
}

// segmentIndex resolves row segments and records each unrecognized label once
type segmentIndex struct {
	src    Source
	metric string
	seen   map[string]bool
	diags  []domain.Diagnostic
}

func newSegmentIndex(src Source, metric string) *segmentIndex {
	return &segmentIndex{src: src, metric: metric, seen: map[string]bool{}}
}

func (s *segmentIndex) platform(segment string) (domain.Platform, bool) {
	label := cleanLabel(segment)
	if p, ok := s.src.Segments[label]; ok {
		return p, true
	}
	if !s.seen[label] {
		s.seen[label] = true
		s.diags = append(s.diags, domain.Diagnostic{
			Source:  s.src.Name,
			Metric:  s.metric,
			Segment: label,
			Reason:  "unrecognized segment ignored",
		})
	}
	return "", false
}

func (s *segmentIndex) duplicate(segment, period string) {
	s.diags = append(s.diags, domain.Diagnostic{
		Source:  s.src.Name,
		Metric:  s.metric,
		Segment: cleanLabel(segment),
		Reason:  fmt.Sprintf("duplicate row for period %s ignored", period),
	})
}

func cleanLabel(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}

// matchesPeriod compares a row's period to a week label (YYYY-MM-DD).
// Timestamps such as 2025-07-14T00:00:00 match on their date part.
func matchesPeriod(period, label string) bool {
	p := cleanLabel(period)
	if len(p) < len(label) {
		return false
	}
	if p[:len(label)] != label {
		return false
	}
	return len(p) == len(label) || p[len(label)] == 'T' || p[len(label)] == ' '
}

// CoversPeriod reports whether a row belongs to the week labelled label.
// Rows without a period cover whatever range they were exported for.
func CoversPeriod(period, label string) bool {
	return cleanLabel(period) == "" || matchesPeriod(period, label)
}
