package report

import (
	"fmt"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/normalize"
	"github.com/de-tools/weekly-pulse/pkg/services/reconcile"
)

// FeedKey identifies the raw rows of one metric of one source
type FeedKey struct {
	Source string
	Metric string
}

func (k FeedKey) String() string {
	return fmt.Sprintf("%s/%s", k.Source, k.Metric)
}

// MetricDefinition declares a metric reported for a source
type MetricDefinition struct {
	Source string
	Name   string
	Kind   domain.MetricKind
}

func (d MetricDefinition) Key() FeedKey {
	return FeedKey{Source: d.Source, Metric: d.Name}
}

// ReconciliationDefinition declares a comparison between two sources.
// With a Taxonomy the feeds' rows are folded onto shared channels; without one
// the two metrics' platform breakdowns are compared.
type ReconciliationDefinition struct {
	Name     string
	SourceA  string
	MetricA  string
	SourceB  string
	MetricB  string
	Taxonomy *reconcile.Taxonomy
}

// Settings configures a Builder
type Settings struct {
	Sources         []normalize.Source
	Metrics         []MetricDefinition
	Reconciliations []ReconciliationDefinition
	Reconcile       reconcile.Settings
	Executive       ExecutiveSettings
	// NewID generates report ids; defaults to random UUIDs
	NewID func() string
}

// Input is everything one report run consumes. Week nil selects the last full
// week relative to Now. Baselines optionally supply the previous week's metrics
// (e.g. from report history) when they cannot be recomputed from the feeds.
type Input struct {
	Week      *domain.ISOWeek
	Now       time.Time
	Feeds     map[FeedKey]normalize.Feed
	Baselines map[FeedKey]domain.PlatformBreakdown
}
