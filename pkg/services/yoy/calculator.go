package yoy

import (
	"math"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// Change computes the YoY delta of a current/previous pair at full precision.
// Volume and ratio metrics yield a relative percentage, rate metrics a difference
// in percentage points. An absent or zero previous value yields an absent delta.
func Change(current, previous domain.Number, kind domain.MetricKind) domain.Number {
	if previous.IsZero() || !current.Valid {
		return domain.None()
	}

	switch kind {
	case domain.KindRate:
		return domain.Some(current.Value - previous.Value)
	default:
		return domain.Some((current.Value - previous.Value) / previous.Value * 100)
	}
}

// Standardize applies Change to a pair
func Standardize(p domain.Pair, kind domain.MetricKind) domain.StandardizedMetric {
	return domain.StandardizedMetric{
		Current:   p.Current,
		Previous:  p.Previous,
		YoYChange: Change(p.Current, p.Previous, kind),
	}
}

// Round1 rounds to one decimal place, half away from zero. Presentation only.
func Round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
