package yoy

import (
	"math"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// FlatThreshold is the absolute change in YoY delta still reported as flat
const FlatThreshold = 0.05

// CompareTrend compares the YoY delta of this week against the previous week's.
// A higher delta is an improvement: a decline that lessened or growth that increased.
func CompareTrend(current, baseline domain.Number) domain.Trend {
	if !current.Valid || !baseline.Valid {
		return domain.TrendNoData
	}
	d := current.Value - baseline.Value
	switch {
	case math.Abs(d) <= FlatThreshold:
		return domain.TrendFlat
	case d > 0:
		return domain.TrendImproved
	default:
		return domain.TrendDeclined
	}
}

// Trends compares every platform of a breakdown to its baseline
func Trends(current, baseline domain.PlatformBreakdown) map[domain.Platform]domain.Trend {
	out := make(map[domain.Platform]domain.Trend, len(domain.Platforms))
	for _, p := range domain.Platforms {
		cur, ok := current[p]
		if !ok {
			continue
		}
		base, ok := baseline[p]
		if !ok {
			out[p] = domain.TrendNoData
			continue
		}
		out[p] = CompareTrend(cur.YoYChange, base.YoYChange)
	}
	return out
}
