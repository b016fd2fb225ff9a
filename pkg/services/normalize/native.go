package normalize

import (
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

type nativeNormalizer struct {
	src Source
}

// Normalize reads paired values from the current feed. Rows carry the prior-year
// value in Comparison. Rows without a period are treated as covering the target week
// unless the target is strict.
func (n *nativeNormalizer) Normalize(metric string, feed Feed, target Target) (Result, error) {
	idx := newSegmentIndex(n.src, metric)
	label := target.Current.Label()
	values := make(map[domain.Platform]domain.Pair)

	for _, row := range feed.Current {
		if target.Strict && !matchesPeriod(row.Period, label) {
			continue
		}
		if !CoversPeriod(row.Period, label) {
			continue
		}

		p, ok := idx.platform(row.Segment)
		if !ok {
			continue
		}
		if _, exists := values[p]; exists {
			idx.duplicate(row.Segment, label)
			continue
		}
		values[p] = domain.Pair{
			Current:  domain.Some(row.Value),
			Previous: row.Comparison,
		}
	}

	if len(feed.Previous) > 0 {
		idx.diags = append(idx.diags, domain.Diagnostic{
			Source: n.src.Name,
			Metric: metric,
			Reason: "previous-year feed ignored for a native comparison source",
		})
	}

	return Result{Values: values, Diagnostics: idx.diags}, nil
}
