package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Recommendations turns the reconciliation into follow-up actions: a SourceB total
// well below SourceA, an inflated direct channel, a paid attribution gap and
// unmapped labels
func (e *Engine) Recommendations(rec domain.Reconciliation) []string {
	var out []string
	printer := message.NewPrinter(language.English)

	if t := rec.Total; t.SourceA.Valid && t.SourceB.Valid &&
		t.SourceA.Value > t.SourceB.Value*(1+e.settings.UnderCountPct/100) {
		out = append(out, printer.Sprintf(
			"%s may be missing %s (%.1f vs %.1f in %s); check that its tracking is implemented and fires on every event",
			rec.SourceB, rec.Metric, t.SourceB.Value, t.SourceA.Value, rec.SourceA))
	}

	for _, c := range rec.Channels {
		switch c.Channel {
		case e.settings.DirectChannel:
			if c.SourceB.Valid && c.SourceB.Value > c.SourceA.Value*e.settings.DirectRatio {
				out = append(out, printer.Sprintf(
					"High %s volume in %s (%.1f) vs %s (%.1f); consider better campaign tracking parameters",
					c.Channel, rec.SourceB, c.SourceB.Value, rec.SourceA, c.SourceA.Value))
			}
		case e.settings.PaidChannel:
			if c.DiffPct.Valid && math.Abs(c.DiffPct.Value) > e.settings.PaidDiffPct {
				out = append(out, fmt.Sprintf(
					"Large discrepancy in %s attribution; verify that all campaigns carry %s tracking links",
					c.Channel, rec.SourceA))
			}
		}
	}

	if len(rec.Unmapped) > 0 {
		unmapped := append([]domain.UnmappedSource(nil), rec.Unmapped...)
		sort.SliceStable(unmapped, func(i, j int) bool { return unmapped[i].Value > unmapped[j].Value })
		if len(unmapped) > e.settings.TopUnmapped {
			unmapped = unmapped[:e.settings.TopUnmapped]
		}
		labels := make([]string, 0, len(unmapped))
		for _, u := range unmapped {
			labels = append(labels, u.Label)
		}
		out = append(out, fmt.Sprintf("Map these sources to channels: %s", strings.Join(labels, ", ")))
	}

	return out
}

// Variance compares two breakdowns of one metric: whether web differs consistently,
// how far apart the combined values are and whether both move the same way YoY
func (e *Engine) Variance(a, b domain.PlatformBreakdown) *domain.PlatformVariance {
	v := &domain.PlatformVariance{
		TypicalRange:   domain.VarianceUnknown,
		TrendAlignment: domain.AlignmentNoData,
	}

	if web := Result(string(domain.PlatformWeb), a[domain.PlatformWeb].Current, b[domain.PlatformWeb].Current); web.DiffPct.Valid {
		v.ConsistentVariance = math.Abs(web.DiffPct.Value) > e.settings.ConsistentVariancePct
	}

	ca, cb := a[domain.PlatformCombined], b[domain.PlatformCombined]
	v.TypicalRange = Result(string(domain.PlatformCombined), ca.Current, cb.Current).Category

	if ca.YoYChange.Valid && cb.YoYChange.Valid {
		ya, yb := ca.YoYChange.Value, cb.YoYChange.Value
		if (ya > 0 && yb > 0) || (ya < 0 && yb < 0) {
			v.TrendAlignment = domain.AlignmentSimilar
		} else {
			v.TrendAlignment = domain.AlignmentDivergent
		}
	}
	return v
}

func (e *Engine) varianceInsights(rec domain.Reconciliation) []string {
	v := rec.Variance
	if v == nil {
		return nil
	}

	var out []string
	if v.ConsistentVariance {
		out = append(out, fmt.Sprintf("Web differs by more than %.0f%% between %s and %s",
			e.settings.ConsistentVariancePct, rec.SourceA, rec.SourceB))
	}
	if v.TypicalRange != domain.VarianceUnknown {
		out = append(out, fmt.Sprintf("Combined difference: %s", strings.ReplaceAll(string(v.TypicalRange), "_", " ")))
	}
	switch v.TrendAlignment {
	case domain.AlignmentSimilar:
		out = append(out, "Combined YoY moves in the same direction in both sources")
	case domain.AlignmentDivergent:
		out = append(out, "Combined YoY diverges between sources")
	}
	return out
}
