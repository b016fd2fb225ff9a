package config

import (
	"fmt"
	"path/filepath"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/normalize"
	"github.com/de-tools/weekly-pulse/pkg/services/reconcile"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Sources         []SourceConfig         `mapstructure:"sources" validate:"required,min=1,dive"`
	Metrics         []MetricConfig         `mapstructure:"metrics" validate:"required,min=1,dive"`
	Reconciliations []ReconciliationConfig `mapstructure:"reconciliations" validate:"dive"`
	Thresholds      ThresholdConfig        `mapstructure:"thresholds"`
	Executive       ExecutiveConfig        `mapstructure:"executive"`
}

type SourceConfig struct {
	Name       string          `mapstructure:"name" validate:"required"`
	Comparison string          `mapstructure:"comparison" validate:"required,oneof=native manual"`
	Segments   []SegmentConfig `mapstructure:"segments" validate:"required,min=1,dive"`
}

// SegmentConfig is a list entry rather than a map key so label case survives viper
type SegmentConfig struct {
	Label    string `mapstructure:"label" validate:"required"`
	Platform string `mapstructure:"platform" validate:"required,oneof=apps web combined"`
}

type MetricConfig struct {
	Source string `mapstructure:"source" validate:"required"`
	Name   string `mapstructure:"name" validate:"required"`
	Kind   string `mapstructure:"kind" validate:"required,oneof=volume rate ratio"`
}

type ReconciliationConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	SourceA string `mapstructure:"source_a" validate:"required"`
	SourceB string `mapstructure:"source_b" validate:"required,nefield=SourceA"`
	Metric  string `mapstructure:"metric" validate:"required"`
	// MetricB names the metric on SourceB when it differs (e.g. installs vs first_open)
	MetricB string `mapstructure:"metric_b"`
	// Taxonomy is an INI channel file, relative to the config file
	Taxonomy string `mapstructure:"taxonomy"`
}

type ThresholdConfig struct {
	AlignedTotalPct  float64 `mapstructure:"aligned_total_pct" validate:"gte=0"`
	MinChannelVolume float64 `mapstructure:"min_channel_volume" validate:"gte=0"`
	MajorDiff        float64 `mapstructure:"major_diff" validate:"gte=0"`
	MajorDiffPct     float64 `mapstructure:"major_diff_pct" validate:"gte=0"`
	TopDiscrepancies int     `mapstructure:"top_discrepancies" validate:"gte=0"`

	UnderCountPct         float64 `mapstructure:"under_count_pct" validate:"gte=0"`
	DirectChannel         string  `mapstructure:"direct_channel"`
	DirectRatio           float64 `mapstructure:"direct_ratio" validate:"gte=0"`
	PaidChannel           string  `mapstructure:"paid_channel"`
	PaidDiffPct           float64 `mapstructure:"paid_diff_pct" validate:"gte=0"`
	TopUnmapped           int     `mapstructure:"top_unmapped" validate:"gte=0"`
	ConsistentVariancePct float64 `mapstructure:"consistent_variance_pct" validate:"gte=0"`
}

// MetricRef points at a configured metric
type MetricRef struct {
	Source string `mapstructure:"source" validate:"required"`
	Name   string `mapstructure:"name" validate:"required"`
}

// ExecutiveConfig selects the metrics compared in the executive summary
type ExecutiveConfig struct {
	Engagement     *MetricRef `mapstructure:"engagement"`
	Acquisition    *MetricRef `mapstructure:"acquisition"`
	DiscrepancyPct float64    `mapstructure:"discrepancy_pct" validate:"gte=0"`
	GrowthPct      float64    `mapstructure:"growth_pct" validate:"gte=0"`
	Actions        int        `mapstructure:"actions" validate:"gte=0"`
}

func (r *MetricRef) key() *report.FeedKey {
	if r == nil {
		return nil
	}
	return &report.FeedKey{Source: r.Source, Metric: r.Name}
}

// LoadConfig reads and validates a report configuration file (yaml, json or toml)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := reconcile.DefaultSettings()
	v.SetDefault("thresholds.aligned_total_pct", defaults.AlignedTotalPct)
	v.SetDefault("thresholds.min_channel_volume", defaults.MinChannelVolume)
	v.SetDefault("thresholds.major_diff", defaults.MajorDiff)
	v.SetDefault("thresholds.major_diff_pct", defaults.MajorDiffPct)
	v.SetDefault("thresholds.top_discrepancies", defaults.TopDiscrepancies)
	v.SetDefault("thresholds.under_count_pct", defaults.UnderCountPct)
	v.SetDefault("thresholds.direct_channel", defaults.DirectChannel)
	v.SetDefault("thresholds.direct_ratio", defaults.DirectRatio)
	v.SetDefault("thresholds.paid_channel", defaults.PaidChannel)
	v.SetDefault("thresholds.paid_diff_pct", defaults.PaidDiffPct)
	v.SetDefault("thresholds.top_unmapped", defaults.TopUnmapped)
	v.SetDefault("thresholds.consistent_variance_pct", defaults.ConsistentVariancePct)

	executive := report.DefaultExecutiveSettings()
	v.SetDefault("executive.discrepancy_pct", executive.DiscrepancyPct)
	v.SetDefault("executive.growth_pct", executive.GrowthPct)
	v.SetDefault("executive.actions", executive.Actions)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid report config: %w", err)
	}
	return &cfg, nil
}

// Settings converts the configuration to builder settings. Taxonomy paths are
// resolved against baseDir.
func (c *Config) Settings(baseDir string) (report.Settings, error) {
	settings := report.Settings{
		Reconcile: reconcile.Settings{
			AlignedTotalPct:  c.Thresholds.AlignedTotalPct,
			MinChannelVolume: c.Thresholds.MinChannelVolume,
			MajorDiff:        c.Thresholds.MajorDiff,
			MajorDiffPct:     c.Thresholds.MajorDiffPct,
			TopDiscrepancies: c.Thresholds.TopDiscrepancies,

			UnderCountPct:         c.Thresholds.UnderCountPct,
			DirectChannel:         c.Thresholds.DirectChannel,
			DirectRatio:           c.Thresholds.DirectRatio,
			PaidChannel:           c.Thresholds.PaidChannel,
			PaidDiffPct:           c.Thresholds.PaidDiffPct,
			TopUnmapped:           c.Thresholds.TopUnmapped,
			ConsistentVariancePct: c.Thresholds.ConsistentVariancePct,
		},
		Executive: report.ExecutiveSettings{
			Engagement:     c.Executive.Engagement.key(),
			Acquisition:    c.Executive.Acquisition.key(),
			DiscrepancyPct: c.Executive.DiscrepancyPct,
			GrowthPct:      c.Executive.GrowthPct,
			Actions:        c.Executive.Actions,
		},
	}

	for _, s := range c.Sources {
		src, err := s.source()
		if err != nil {
			return report.Settings{}, err
		}
		settings.Sources = append(settings.Sources, src)
	}

	for _, m := range c.Metrics {
		kind, err := domain.ParseMetricKind(m.Kind)
		if err != nil {
			return report.Settings{}, fmt.Errorf("metric %s/%s: %w", m.Source, m.Name, err)
		}
		settings.Metrics = append(settings.Metrics, report.MetricDefinition{
			Source: m.Source,
			Name:   m.Name,
			Kind:   kind,
		})
	}

	for _, r := range c.Reconciliations {
		def := report.ReconciliationDefinition{
			Name:    r.Name,
			SourceA: r.SourceA,
			MetricA: r.Metric,
			SourceB: r.SourceB,
			MetricB: r.Metric,
		}
		if r.MetricB != "" {
			def.MetricB = r.MetricB
		}
		if r.Taxonomy != "" {
			path := r.Taxonomy
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			tax, err := reconcile.LoadTaxonomy(path)
			if err != nil {
				return report.Settings{}, fmt.Errorf("reconciliation %s: %w", r.Name, err)
			}
			def.Taxonomy = tax
		}
		settings.Reconciliations = append(settings.Reconciliations, def)
	}

	return settings, nil
}

func (s SourceConfig) source() (normalize.Source, error) {
	capability, err := normalize.ParseCapability(s.Comparison)
	if err != nil {
		return normalize.Source{}, fmt.Errorf("source %s: %w", s.Name, err)
	}

	segments := make(normalize.SegmentMap, len(s.Segments))
	for _, seg := range s.Segments {
		p, err := domain.ParsePlatform(seg.Platform)
		if err != nil {
			return normalize.Source{}, fmt.Errorf("source %s: %w", s.Name, err)
		}
		if _, dup := segments[seg.Label]; dup {
			return normalize.Source{}, fmt.Errorf("source %s: segment %q mapped twice", s.Name, seg.Label)
		}
		segments[seg.Label] = p
	}

	return normalize.Source{Name: s.Name, Capability: capability, Segments: segments}, nil
}

// LoadSettings reads the configuration file and resolves it into builder settings
func LoadSettings(path string) (report.Settings, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return report.Settings{}, err
	}
	return cfg.Settings(filepath.Dir(path))
}
