package yoy

import (
	"fmt"
	"math"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// combinedMismatchTolerance is the relative gap between a source-provided combined
// value and apps+web above which a diagnostic is recorded
const combinedMismatchTolerance = 0.005

// Aggregator folds per-platform pairs of one metric into a PlatformBreakdown
type Aggregator struct {
	Source string
	Metric string
	Kind   domain.MetricKind
}

// Aggregate standardizes apps and web and derives combined.
//
// For additive metrics with both apps and web current values, combined is their
// sum (current and previous summed independently) and YoY is recomputed from the
// sums. When the summed previous value is incomplete and the source has its own
// complete combined pair, that pair is used. Otherwise combined comes from the
// source's own combined segment. Non-additive
// metrics without a combined segment fail with NonAdditiveMetricError.
func (a Aggregator) Aggregate(values map[domain.Platform]domain.Pair) (domain.PlatformBreakdown, []domain.Diagnostic, error) {
	out := domain.PlatformBreakdown{}
	var diags []domain.Diagnostic

	apps, hasApps := values[domain.PlatformApps]
	web, hasWeb := values[domain.PlatformWeb]
	sourceCombined, hasCombined := values[domain.PlatformCombined]

	if hasApps {
		out[domain.PlatformApps] = Standardize(apps, a.Kind)
	}
	if hasWeb {
		out[domain.PlatformWeb] = Standardize(web, a.Kind)
	}

	if !a.Kind.Additive() {
		if !hasCombined {
			return nil, diags, &domain.NonAdditiveMetricError{Source: a.Source, Metric: a.Metric, Kind: a.Kind}
		}
		out[domain.PlatformCombined] = Standardize(sourceCombined, a.Kind)
		return out, diags, nil
	}

	if hasApps && hasWeb && apps.Current.Valid && web.Current.Valid {
		summed := domain.Pair{
			Current:  sum(apps.Current, web.Current),
			Previous: sum(apps.Previous, web.Previous),
		}
		if hasCombined && mismatch(sourceCombined.Current, summed.Current) {
			diags = append(diags, domain.Diagnostic{
				Source: a.Source,
				Metric: a.Metric,
				Reason: fmt.Sprintf("source combined value %.1f differs from apps+web %.1f; using apps+web",
					sourceCombined.Current.Value, summed.Current.Value),
			})
		}
		if !summed.Previous.Valid && hasCombined && sourceCombined.Current.Valid && sourceCombined.Previous.Valid {
			diags = append(diags, domain.Diagnostic{
				Source: a.Source,
				Metric: a.Metric,
				Reason: "apps+web previous value incomplete; using source combined values",
			})
			out[domain.PlatformCombined] = Standardize(sourceCombined, a.Kind)
			return out, diags, nil
		}
		out[domain.PlatformCombined] = Standardize(summed, a.Kind)
		return out, diags, nil
	}

	if hasCombined {
		out[domain.PlatformCombined] = Standardize(sourceCombined, a.Kind)
	}
	return out, diags, nil
}

// sum is absent when either side is absent; a partial sum is not a total
func sum(a, b domain.Number) domain.Number {
	if !a.Valid || !b.Valid {
		return domain.None()
	}
	return domain.Some(a.Value + b.Value)
}

func mismatch(provided, summed domain.Number) bool {
	if !provided.Valid || !summed.Valid {
		return false
	}
	if summed.Value == 0 {
		return provided.Value != 0
	}
	return math.Abs(provided.Value-summed.Value)/math.Abs(summed.Value) > combinedMismatchTolerance
}
