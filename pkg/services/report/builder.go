package report

import (
	"context"
	"fmt"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/normalize"
	"github.com/de-tools/weekly-pulse/pkg/services/reconcile"
	"github.com/de-tools/weekly-pulse/pkg/services/summary"
	"github.com/de-tools/weekly-pulse/pkg/services/week"
	"github.com/de-tools/weekly-pulse/pkg/services/yoy"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Builder turns already-fetched raw rows into a WeeklyReport. It keeps no state
// between builds and may be shared by concurrent callers.
type Builder struct {
	normalizers       map[string]normalize.Normalizer
	metrics           []MetricDefinition
	reconciliations   []ReconciliationDefinition
	engine            *reconcile.Engine
	executiveSettings ExecutiveSettings
	composer          *summary.Composer
	history           History
	newID             func() string
}

// History supplies the metrics of previously built reports
type History interface {
	Baselines(ctx context.Context, w domain.ISOWeek) (map[FeedKey]domain.PlatformBreakdown, error)
}

// WithHistory makes Build fall back to stored reports for the trend baseline
// when the input carries no baselines
func (b *Builder) WithHistory(h History) *Builder {
	b.history = h
	return b
}

func NewBuilder(settings Settings) (*Builder, error) {
	b := &Builder{
		normalizers:       make(map[string]normalize.Normalizer),
		metrics:           settings.Metrics,
		reconciliations:   settings.Reconciliations,
		engine:            reconcile.NewEngine(settings.Reconcile),
		executiveSettings: settings.Executive.withDefaults(),
		newID:             settings.NewID,
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}

	for _, src := range settings.Sources {
		if _, exists := b.normalizers[src.Name]; exists {
			return nil, fmt.Errorf("duplicate source: %s", src.Name)
		}
		n, err := normalize.New(src)
		if err != nil {
			return nil, err
		}
		b.normalizers[src.Name] = n
	}

	seen := make(map[FeedKey]bool)
	for _, m := range b.metrics {
		if _, ok := b.normalizers[m.Source]; !ok {
			return nil, fmt.Errorf("metric %s references unknown source %q", m.Key(), m.Source)
		}
		if seen[m.Key()] {
			return nil, fmt.Errorf("duplicate metric: %s", m.Key())
		}
		seen[m.Key()] = true
	}
	for _, key := range []*FeedKey{b.executiveSettings.Engagement, b.executiveSettings.Acquisition} {
		if key != nil && !seen[*key] {
			return nil, fmt.Errorf("executive summary references unknown metric %s", key)
		}
	}

	composer, err := summary.NewComposer()
	if err != nil {
		return nil, err
	}
	b.composer = composer

	return b, nil
}

// periods are the date ranges a report run reads
type periods struct {
	target       domain.ISOWeek
	current      normalize.Target
	previousYear domain.YearEquivalent
	baselineWeek domain.ISOWeek
	baseline     *normalize.Target
}

func resolvePeriods(requested *domain.ISOWeek, in Input) (periods, error) {
	target, err := week.ResolveTarget(requested, in.Now)
	if err != nil {
		return periods{}, err
	}
	cur, err := targetFor(target)
	if err != nil {
		return periods{}, err
	}

	p := periods{
		target:       target,
		current:      cur,
		previousYear: week.PreviousYearEquivalent(target),
	}

	p.baselineWeek, err = week.Previous(target)
	if err != nil {
		return periods{}, err
	}
	base, err := targetFor(p.baselineWeek)
	if err != nil {
		return periods{}, err
	}
	// period-less rows describe the report week, never the week before it
	base.Strict = true
	p.baseline = &base
	return p, nil
}

func targetFor(w domain.ISOWeek) (normalize.Target, error) {
	cur, err := week.Resolve(w.Year, w.Week)
	if err != nil {
		return normalize.Target{}, err
	}
	eq := week.PreviousYearEquivalent(w)
	prev, err := week.Resolve(eq.Week.Year, eq.Week.Week)
	if err != nil {
		return normalize.Target{}, err
	}
	return normalize.Target{Current: cur, Previous: prev}, nil
}

// Build computes every configured metric and reconciliation for the target week.
// A failing metric is recorded on its MetricReport and does not stop the others;
// only an invalid target week fails the whole build.
func (b *Builder) Build(ctx context.Context, in Input) (*domain.WeeklyReport, error) {
	logger := zerolog.Ctx(ctx)

	p, err := resolvePeriods(in.Week, in)
	if err != nil {
		return nil, err
	}

	report := &domain.WeeklyReport{
		ID:           b.newID(),
		Week:         p.target,
		Range:        p.current.Current,
		PreviousYear: p.previousYear,
		BaselineWeek: p.baselineWeek,
		GeneratedAt:  in.Now,
	}

	if in.Baselines == nil && b.history != nil {
		baselines, err := b.history.Baselines(ctx, p.baselineWeek)
		if err != nil {
			logger.Warn().Err(err).Str("week", p.baselineWeek.String()).Msg("failed to load baselines from history")
		}
		in.Baselines = baselines
	}

	for _, def := range b.metrics {
		m := b.buildMetric(def, p, in)
		if m.Failed() {
			logger.Warn().
				Str("source", def.Source).
				Str("metric", def.Name).
				Str("week", p.target.String()).
				Msg(m.Error)
		}
		for _, d := range m.Diagnostics {
			logger.Info().Str("source", d.Source).Str("metric", d.Metric).Msg(d.String())
		}
		report.Metrics = append(report.Metrics, m)
	}

	for _, def := range b.reconciliations {
		rec := b.buildReconciliation(def, p, in, report)
		if rec.Error != "" {
			logger.Warn().Str("reconciliation", def.Name).Msg(rec.Error)
		}
		report.Reconciliations = append(report.Reconciliations, rec)
	}

	report.Executive = b.executive(report)

	report.Summary, err = b.composer.Compose(report, p.current.Previous, summary.FormatText)
	if err != nil {
		return nil, fmt.Errorf("failed to compose summary: %w", err)
	}

	return report, nil
}

// Compose renders an already built report in another format
func (b *Builder) Compose(report *domain.WeeklyReport, format summary.Format) (string, error) {
	eq := report.PreviousYear.Week
	prev, err := week.Resolve(eq.Year, eq.Week)
	if err != nil {
		return "", err
	}
	return b.composer.Compose(report, prev, format)
}

func (b *Builder) buildMetric(def MetricDefinition, p periods, in Input) domain.MetricReport {
	m := domain.MetricReport{
		Source: def.Source,
		Metric: def.Name,
		Kind:   def.Kind,
	}

	feed, ok := in.Feeds[def.Key()]
	if !ok {
		m.Error = b.metricError(def, p.target, fmt.Errorf("no rows supplied")).Error()
		return m
	}

	breakdown, diags, err := b.compute(def, feed, p.current)
	m.Diagnostics = diags
	if err != nil {
		m.Error = b.metricError(def, p.target, err).Error()
		return m
	}
	m.Breakdown = breakdown

	if base, ok := in.Baselines[def.Key()]; ok {
		m.Baseline = base
	} else if p.baseline != nil {
		// the prior week is usually present in multi-week exports; when it is not the
		// trend is reported as no data
		if base, _, err := b.compute(def, feed, *p.baseline); err == nil {
			m.Baseline = base
		}
	}
	m.Trend = yoy.Trends(m.Breakdown, m.Baseline)

	return m
}

func (b *Builder) compute(
	def MetricDefinition,
	feed normalize.Feed,
	target normalize.Target,
) (domain.PlatformBreakdown, []domain.Diagnostic, error) {
	res, err := b.normalizers[def.Source].Normalize(def.Name, feed, target)
	if err != nil {
		return nil, nil, err
	}
	if len(res.Values) == 0 {
		return domain.PlatformBreakdown{}, res.Diagnostics, nil
	}

	agg := yoy.Aggregator{Source: def.Source, Metric: def.Name, Kind: def.Kind}
	breakdown, diags, err := agg.Aggregate(res.Values)
	return breakdown, append(res.Diagnostics, diags...), err
}

func (b *Builder) metricError(def MetricDefinition, w domain.ISOWeek, err error) error {
	return &domain.MetricError{Source: def.Source, Metric: def.Name, Week: w, Err: err}
}

func (b *Builder) buildReconciliation(
	def ReconciliationDefinition,
	p periods,
	in Input,
	report *domain.WeeklyReport,
) domain.Reconciliation {
	failed := func(err error) domain.Reconciliation {
		return domain.Reconciliation{
			Name:    def.Name,
			SourceA: def.SourceA,
			SourceB: def.SourceB,
			Metric:  def.MetricA,
			Error:   err.Error(),
		}
	}

	if def.Taxonomy == nil {
		a, okA := report.Metric(def.SourceA, def.MetricA)
		bm, okB := report.Metric(def.SourceB, def.MetricB)
		switch {
		case !okA || a.Failed():
			return failed(fmt.Errorf("metric %s/%s unavailable", def.SourceA, def.MetricA))
		case !okB || bm.Failed():
			return failed(fmt.Errorf("metric %s/%s unavailable", def.SourceB, def.MetricB))
		}
		return b.engine.ReconcileBreakdowns(def.Name, def.SourceA, def.SourceB, def.MetricA, a.Breakdown, bm.Breakdown)
	}

	feedA, okA := in.Feeds[FeedKey{Source: def.SourceA, Metric: def.MetricA}]
	feedB, okB := in.Feeds[FeedKey{Source: def.SourceB, Metric: def.MetricB}]
	switch {
	case !okA:
		return failed(fmt.Errorf("no rows supplied for %s/%s", def.SourceA, def.MetricA))
	case !okB:
		return failed(fmt.Errorf("no rows supplied for %s/%s", def.SourceB, def.MetricB))
	}

	label := p.current.Current.Label()
	rec, err := b.engine.Reconcile(reconcile.Input{
		Name:     def.Name,
		SourceA:  def.SourceA,
		SourceB:  def.SourceB,
		Metric:   def.MetricA,
		Taxonomy: def.Taxonomy,
		RowsA:    rowsForWeek(feedA.Current, label),
		RowsB:    rowsForWeek(feedB.Current, label),
	})
	if err != nil {
		return failed(err)
	}
	return rec
}

// rowsForWeek keeps rows without a period or whose period is the target week
func rowsForWeek(rows []domain.RawMetricRow, label string) []domain.RawMetricRow {
	out := make([]domain.RawMetricRow, 0, len(rows))
	for _, r := range rows {
		if normalize.CoversPeriod(r.Period, label) {
			out = append(out, r)
		}
	}
	return out
}
