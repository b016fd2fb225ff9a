package normalize

import (
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

type manualNormalizer struct {
	src Source
}

// Normalize locates the target week's column independently in the current and
// previous feeds. A feed without that exact period fails with MissingPeriodError;
// adjacent periods are never substituted.
func (n *manualNormalizer) Normalize(metric string, feed Feed, target Target) (Result, error) {
	idx := newSegmentIndex(n.src, metric)

	current, err := n.extract(idx, metric, "current", feed.Current, target.Current.Label())
	if err != nil {
		return Result{}, err
	}
	previous, err := n.extract(idx, metric, "previous", feed.Previous, target.Previous.Label())
	if err != nil {
		return Result{}, err
	}

	values := make(map[domain.Platform]domain.Pair)
	for p, v := range current {
		pair := values[p]
		pair.Current = domain.Some(v)
		values[p] = pair
	}
	for p, v := range previous {
		pair := values[p]
		pair.Previous = domain.Some(v)
		values[p] = pair
	}

	return Result{Values: values, Diagnostics: idx.diags}, nil
}

func (n *manualNormalizer) extract(
	idx *segmentIndex,
	metric, feedName string,
	rows []domain.RawMetricRow,
	label string,
) (map[domain.Platform]float64, error) {
	found := false
	out := make(map[domain.Platform]float64)

	for _, row := range rows {
		if !matchesPeriod(row.Period, label) {
			continue
		}
		found = true

		p, ok := idx.platform(row.Segment)
		if !ok {
			continue
		}
		if _, exists := out[p]; exists {
			idx.duplicate(row.Segment, label)
			continue
		}
		out[p] = row.Value
	}

	if !found {
		return nil, &domain.MissingPeriodError{
			Source: n.src.Name,
			Metric: metric,
			Feed:   feedName,
			Label:  label,
		}
	}
	return out, nil
}
