package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// Settings holds the thresholds used to derive insights
type Settings struct {
	// AlignedTotalPct is the total difference still considered aligned (default: 5)
	AlignedTotalPct float64
	// MinChannelVolume is the value either source must exceed for a channel to count (default: 50)
	MinChannelVolume float64
	// MajorDiff is the absolute difference for a major discrepancy (default: 100)
	MajorDiff float64
	// MajorDiffPct is the relative difference for a major discrepancy (default: 20)
	MajorDiffPct float64
	// TopDiscrepancies is the number of discrepancies listed (default: 3)
	TopDiscrepancies int

	// UnderCountPct is how far SourceB's total may fall below SourceA's before
	// missing tracking is suspected (default: 10)
	UnderCountPct float64
	// DirectChannel and DirectRatio flag a direct channel inflated in SourceB (default: Direct, 1.5)
	DirectChannel string
	DirectRatio   float64
	// PaidChannel and PaidDiffPct flag paid attribution gaps (default: Paid Search, 30)
	PaidChannel string
	PaidDiffPct float64
	// TopUnmapped is the number of unmapped labels named in a recommendation (default: 3)
	TopUnmapped int
	// ConsistentVariancePct is the web difference marking a consistent platform variance (default: 10)
	ConsistentVariancePct float64
}

func DefaultSettings() Settings {
	return Settings{
		AlignedTotalPct:  5,
		MinChannelVolume: 50,
		MajorDiff:        100,
		MajorDiffPct:     20,
		TopDiscrepancies: 3,

		UnderCountPct:         10,
		DirectChannel:         "Direct",
		DirectRatio:           1.5,
		PaidChannel:           "Paid Search",
		PaidDiffPct:           30,
		TopUnmapped:           3,
		ConsistentVariancePct: 10,
	}
}

// ChannelValues is one source's value per shared channel
type ChannelValues map[string]float64

type Engine struct {
	settings Settings
}

func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings}
}

// Compare reconciles two channel maps. Every channel present on either side is
// reported; channels present on one side only are flagged unmatched.
func (e *Engine) Compare(a, b ChannelValues) ([]domain.ReconciliationResult, domain.ReconciliationResult) {
	names := make(map[string]bool, len(a)+len(b))
	for k := range a {
		names[k] = true
	}
	for k := range b {
		names[k] = true
	}

	results := make([]domain.ReconciliationResult, 0, len(names))
	var totalA, totalB float64
	for name := range names {
		va, okA := a[name]
		vb, okB := b[name]
		na, nb := domain.None(), domain.None()
		if okA {
			na = domain.Some(va)
			totalA += va
		}
		if okB {
			nb = domain.Some(vb)
			totalB += vb
		}
		r := Result(name, na, nb)
		r.Unmatched = !okA || !okB
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		vi, vj := sortValue(results[i]), sortValue(results[j])
		if vi != vj {
			return vi > vj
		}
		return results[i].Channel < results[j].Channel
	})

	total := Result("Total", domain.Some(totalA), domain.Some(totalB))
	return results, total
}

// Result computes diff and diff_pct for one channel. DiffPct is absent when
// SourceA is absent or zero.
func Result(channel string, a, b domain.Number) domain.ReconciliationResult {
	r := domain.ReconciliationResult{
		Channel: channel,
		SourceA: a,
		SourceB: b,
	}
	if a.Valid && b.Valid {
		r.Diff = domain.Some(b.Value - a.Value)
		if a.Value != 0 {
			r.DiffPct = domain.Some(r.Diff.Value / a.Value * 100)
		}
	}
	r.Category = Categorize(r.DiffPct)
	return r
}

func sortValue(r domain.ReconciliationResult) float64 {
	return math.Max(r.SourceA.Value, r.SourceB.Value)
}

// Categorize buckets a relative difference
func Categorize(pct domain.Number) domain.VarianceCategory {
	if !pct.Valid {
		return domain.VarianceUnknown
	}
	switch abs := math.Abs(pct.Value); {
	case abs < 5:
		return domain.VarianceVeryClose
	case abs < 15:
		return domain.VarianceModerate
	case abs < 30:
		return domain.VarianceSignificant
	default:
		return domain.VarianceMajor
	}
}

// Input describes one reconciliation: rows of both sources are folded through the taxonomy
type Input struct {
	Name     string
	SourceA  string
	SourceB  string
	Metric   string
	Taxonomy *Taxonomy
	RowsA    []domain.RawMetricRow
	RowsB    []domain.RawMetricRow
}

// Reconcile folds both row sets onto the shared channels and compares them
func (e *Engine) Reconcile(in Input) (domain.Reconciliation, error) {
	if in.Taxonomy == nil {
		return domain.Reconciliation{}, fmt.Errorf("reconciliation %q has no channel taxonomy", in.Name)
	}

	a, unmappedA := in.Taxonomy.Fold(in.RowsA)
	b, unmappedB := in.Taxonomy.Fold(in.RowsB)

	channels, total := e.Compare(a, b)
	rec := domain.Reconciliation{
		Name:     in.Name,
		SourceA:  in.SourceA,
		SourceB:  in.SourceB,
		Metric:   in.Metric,
		Channels: channels,
		Total:    total,
		Unmapped: append(unmappedA, unmappedB...),
	}
	rec.Insights = e.Insights(rec)
	if idle := idleChannels(in.Taxonomy, a, b); len(idle) > 0 {
		rec.Insights = append(rec.Insights, fmt.Sprintf("No rows from either source for %s", strings.Join(idle, ", ")))
	}
	rec.Recommendations = e.Recommendations(rec)
	return rec, nil
}

// ReconcileBreakdowns compares the current values of two platform breakdowns of the
// same metric, one row per platform key
func (e *Engine) ReconcileBreakdowns(name, sourceA, sourceB, metric string, a, b domain.PlatformBreakdown) domain.Reconciliation {
	channels := make([]domain.ReconciliationResult, 0, len(domain.Platforms))
	for _, p := range domain.Platforms {
		ma, okA := a[p]
		mb, okB := b[p]
		if !okA && !okB {
			continue
		}
		r := Result(string(p), ma.Current, mb.Current)
		r.Unmatched = !ma.Current.Valid || !mb.Current.Valid
		channels = append(channels, r)
	}

	total := Result("Total", domain.None(), domain.None())
	for _, c := range channels {
		if c.Channel == string(domain.PlatformCombined) {
			total = c
			total.Channel = "Total"
		}
	}

	rec := domain.Reconciliation{
		Name:     name,
		SourceA:  sourceA,
		SourceB:  sourceB,
		Metric:   metric,
		Channels: channels,
		Total:    total,
	}
	rec.Variance = e.Variance(a, b)
	rec.Insights = append(e.Insights(rec), e.varianceInsights(rec)...)
	rec.Recommendations = e.Recommendations(rec)
	return rec
}

// idleChannels lists the configured channels neither source reported
func idleChannels(t *Taxonomy, a, b ChannelValues) []string {
	var out []string
	for _, c := range t.Channels() {
		_, okA := a[c]
		_, okB := b[c]
		if !okA && !okB {
			out = append(out, c)
		}
	}
	return out
}
