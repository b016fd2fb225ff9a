package reconcile

import (
	"fmt"
	"math"
	"sort"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Insights summarizes the overall alignment, the largest channel discrepancies
// and the volume that could not be mapped
func (e *Engine) Insights(rec domain.Reconciliation) []string {
	var insights []string
	printer := message.NewPrinter(language.English)

	if t := rec.Total; t.DiffPct.Valid {
		if math.Abs(t.DiffPct.Value) > e.settings.AlignedTotalPct {
			direction := "more"
			if t.Diff.Value < 0 {
				direction = "fewer"
			}
			insights = append(insights, printer.Sprintf("%s reports %.1f %s than %s (%+.1f%%)",
				rec.SourceB, math.Abs(t.Diff.Value), direction, rec.SourceA, t.DiffPct.Value))
		} else {
			insights = append(insights, fmt.Sprintf("Totals are aligned between %s and %s (within %.0f%%)",
				rec.SourceA, rec.SourceB, e.settings.AlignedTotalPct))
		}
	}

	var major []domain.ReconciliationResult
	for _, c := range rec.Channels {
		if !c.Diff.Valid || !c.DiffPct.Valid {
			continue
		}
		if c.SourceA.Value <= e.settings.MinChannelVolume && c.SourceB.Value <= e.settings.MinChannelVolume {
			continue
		}
		if math.Abs(c.Diff.Value) > e.settings.MajorDiff && math.Abs(c.DiffPct.Value) > e.settings.MajorDiffPct {
			major = append(major, c)
		}
	}
	sort.SliceStable(major, func(i, j int) bool {
		return math.Abs(major[i].Diff.Value) > math.Abs(major[j].Diff.Value)
	})
	if len(major) > e.settings.TopDiscrepancies {
		major = major[:e.settings.TopDiscrepancies]
	}
	for _, c := range major {
		direction := "over-reports"
		if c.Diff.Value < 0 {
			direction = "under-reports"
		}
		insights = append(insights, printer.Sprintf("%s: %s %s by %.1f (%+.1f%%)",
			c.Channel, rec.SourceB, direction, math.Abs(c.Diff.Value), c.DiffPct.Value))
	}

	var unmatched []string
	for _, c := range rec.Channels {
		if c.Unmatched {
			unmatched = append(unmatched, c.Channel)
		}
	}
	if len(unmatched) > 0 {
		insights = append(insights, fmt.Sprintf("%d channel(s) reported by one source only: %v", len(unmatched), unmatched))
	}

	if len(rec.Unmapped) > 0 {
		var total float64
		for _, u := range rec.Unmapped {
			total += u.Value
		}
		insights = append(insights, printer.Sprintf("%.1f from %d unmapped source label(s)", total, len(rec.Unmapped)))
	}

	return insights
}
