package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/api"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/models/store"
	"github.com/de-tools/weekly-pulse/pkg/services/normalize"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/de-tools/weekly-pulse/pkg/services/week"
)

func MapRawRowApiToDomain(r api.RawRow) domain.RawMetricRow {
	row := domain.RawMetricRow{
		Segment: r.Segment,
		Period:  r.Period,
		Value:   r.Value,
	}
	if r.Comparison != nil {
		row.Comparison = domain.Some(*r.Comparison)
	}
	return row
}

func mapRows(rows []api.RawRow) []domain.RawMetricRow {
	out := make([]domain.RawMetricRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, MapRawRowApiToDomain(r))
	}
	return out
}

// MapReportRequestApiToInput converts a raw-row bundle to builder input.
// The request's Now, when set, overrides now.
func MapReportRequestApiToInput(req api.ReportRequest, now time.Time) (report.Input, error) {
	in := report.Input{
		Now:   now,
		Feeds: make(map[report.FeedKey]normalize.Feed, len(req.Feeds)),
	}
	if req.Now != nil {
		in.Now = *req.Now
	}

	if req.Week != "" {
		w, err := week.Parse(req.Week)
		if err != nil {
			return report.Input{}, err
		}
		in.Week = &w
	}

	for _, f := range req.Feeds {
		key := report.FeedKey{Source: f.Source, Metric: f.Metric}
		if _, exists := in.Feeds[key]; exists {
			return report.Input{}, fmt.Errorf("duplicate feed %s", key)
		}
		in.Feeds[key] = normalize.Feed{
			Current:  mapRows(f.Current),
			Previous: mapRows(f.Previous),
		}
	}

	return in, nil
}

// MergeReportRequests concatenates the feeds of several bundles. The first
// non-empty week and now win.
func MergeReportRequests(reqs ...api.ReportRequest) api.ReportRequest {
	var out api.ReportRequest
	for _, r := range reqs {
		if out.Week == "" {
			out.Week = r.Week
		}
		if out.Now == nil {
			out.Now = r.Now
		}
		out.Feeds = append(out.Feeds, r.Feeds...)
	}
	return out
}

func MapDateRangeDomainToApi(r domain.DateRange) api.DateRange {
	return api.DateRange{
		Start: r.Start.Format(domain.DateLayout),
		End:   r.End.Format(domain.DateLayout),
	}
}

func MapWeekDomainToApi(w domain.ISOWeek, r domain.DateRange) api.Week {
	return api.Week{
		Year:  w.Year,
		Week:  w.Week,
		Label: w.String(),
		Range: MapDateRangeDomainToApi(r),
	}
}

// MapWeekToApiResponse resolves the date ranges of a week and its prior-year equivalent
func MapWeekToApiResponse(w domain.ISOWeek) (api.WeekResponse, error) {
	r, err := week.Resolve(w.Year, w.Week)
	if err != nil {
		return api.WeekResponse{}, err
	}
	eq := week.PreviousYearEquivalent(w)
	prev, err := week.Resolve(eq.Week.Year, eq.Week.Week)
	if err != nil {
		return api.WeekResponse{}, err
	}
	return api.WeekResponse{
		Week:         MapWeekDomainToApi(w, r),
		PreviousYear: MapWeekDomainToApi(eq.Week, prev),
		Substituted:  eq.Substituted,
	}, nil
}

func MapMetricReportDomainToApi(m domain.MetricReport) api.Metric {
	res := api.Metric{
		Source:    m.Source,
		Metric:    m.Metric,
		Kind:      string(m.Kind),
		Platforms: make([]api.PlatformValue, 0, len(m.Breakdown)),
		Error:     m.Error,
	}
	for _, p := range domain.Platforms {
		v, ok := m.Breakdown[p]
		if !ok {
			continue
		}
		res.Platforms = append(res.Platforms, api.PlatformValue{
			Platform:  string(p),
			Current:   v.Current.Ptr(),
			Previous:  v.Previous.Ptr(),
			YoYChange: v.YoYChange.Ptr(),
			Trend:     string(m.Trend[p]),
		})
	}
	for _, d := range m.Diagnostics {
		res.Diagnostics = append(res.Diagnostics, d.String())
	}
	return res
}

func MapReconciliationResultDomainToApi(r domain.ReconciliationResult) api.Channel {
	return api.Channel{
		Channel:   r.Channel,
		SourceA:   r.SourceA.Ptr(),
		SourceB:   r.SourceB.Ptr(),
		Diff:      r.Diff.Ptr(),
		DiffPct:   r.DiffPct.Ptr(),
		Unmatched: r.Unmatched,
		Category:  string(r.Category),
	}
}

func MapReconciliationDomainToApi(r domain.Reconciliation) api.Reconciliation {
	res := api.Reconciliation{
		Name:     r.Name,
		SourceA:  r.SourceA,
		SourceB:  r.SourceB,
		Metric:   r.Metric,
		Channels: make([]api.Channel, 0, len(r.Channels)),
		Total:    MapReconciliationResultDomainToApi(r.Total),
		Insights: r.Insights,
		Error:    r.Error,

		Recommendations: r.Recommendations,
	}
	if v := r.Variance; v != nil {
		res.Variance = &api.PlatformVariance{
			ConsistentVariance: v.ConsistentVariance,
			TypicalRange:       string(v.TypicalRange),
			TrendAlignment:     string(v.TrendAlignment),
		}
	}
	for _, c := range r.Channels {
		res.Channels = append(res.Channels, MapReconciliationResultDomainToApi(c))
	}
	for _, u := range r.Unmapped {
		res.Unmapped = append(res.Unmapped, api.UnmappedSource{Label: u.Label, Value: u.Value})
	}
	return res
}

func MapWeeklyReportDomainToApi(r *domain.WeeklyReport) (api.Report, error) {
	prev, err := week.Resolve(r.PreviousYear.Week.Year, r.PreviousYear.Week.Week)
	if err != nil {
		return api.Report{}, err
	}

	res := api.Report{
		ID:              r.ID,
		Week:            MapWeekDomainToApi(r.Week, r.Range),
		PreviousYear:    MapWeekDomainToApi(r.PreviousYear.Week, prev),
		Substituted:     r.PreviousYear.Substituted,
		BaselineWeek:    r.BaselineWeek.String(),
		GeneratedAt:     r.GeneratedAt,
		Metrics:         make([]api.Metric, 0, len(r.Metrics)),
		Reconciliations: make([]api.Reconciliation, 0, len(r.Reconciliations)),
		Executive: api.Executive{
			Insights: nonNil(r.Executive.Insights),
			Actions:  nonNil(r.Executive.Actions),
		},
		Summary: r.Summary,
	}
	for _, m := range r.Metrics {
		res.Metrics = append(res.Metrics, MapMetricReportDomainToApi(m))
	}
	for _, rec := range r.Reconciliations {
		res.Reconciliations = append(res.Reconciliations, MapReconciliationDomainToApi(rec))
	}
	return res, nil
}

// MapWeeklyReportDomainToStore flattens a report into its history row and one
// row per computed platform value. Failed metrics have no rows.
func MapWeeklyReportDomainToStore(r *domain.WeeklyReport) (store.Report, []store.MetricResult, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return store.Report{}, nil, fmt.Errorf("marshal report: %w", err)
	}

	rec := store.Report{
		ID:          r.ID,
		Year:        r.Week.Year,
		Week:        r.Week.Week,
		RangeStart:  r.Range.Start,
		RangeEnd:    r.Range.End,
		GeneratedAt: r.GeneratedAt,
		Summary:     r.Summary,
		Payload:     payload,
	}

	var metrics []store.MetricResult
	for _, m := range r.Metrics {
		if m.Failed() {
			continue
		}
		for _, p := range domain.Platforms {
			v, ok := m.Breakdown[p]
			if !ok {
				continue
			}
			metrics = append(metrics, store.MetricResult{
				ReportID:  r.ID,
				Source:    m.Source,
				Metric:    m.Metric,
				Kind:      string(m.Kind),
				Platform:  string(p),
				Current:   v.Current.Ptr(),
				Previous:  v.Previous.Ptr(),
				YoYChange: v.YoYChange.Ptr(),
			})
		}
	}

	return rec, metrics, nil
}

func MapStoreReportToDomain(r store.Report) (*domain.WeeklyReport, error) {
	var out domain.WeeklyReport
	if err := json.Unmarshal(r.Payload, &out); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", r.ID, err)
	}
	return &out, nil
}

func MapStoreReportToApiSummary(r store.Report) api.ReportSummary {
	return api.ReportSummary{
		ID:          r.ID,
		Week:        domain.ISOWeek{Year: r.Year, Week: r.Week}.String(),
		GeneratedAt: r.GeneratedAt,
		Summary:     r.Summary,
	}
}

func number(v *float64) domain.Number {
	if v == nil {
		return domain.None()
	}
	return domain.Some(*v)
}

// MapStoreMetricResultsToBaselines rebuilds platform breakdowns keyed by feed.
// Rows with an unknown platform are skipped.
func MapStoreMetricResultsToBaselines(results []store.MetricResult) map[report.FeedKey]domain.PlatformBreakdown {
	out := make(map[report.FeedKey]domain.PlatformBreakdown)
	for _, r := range results {
		p, err := domain.ParsePlatform(r.Platform)
		if err != nil {
			continue
		}
		key := report.FeedKey{Source: r.Source, Metric: r.Metric}
		if out[key] == nil {
			out[key] = domain.PlatformBreakdown{}
		}
		out[key][p] = domain.StandardizedMetric{
			Current:   number(r.Current),
			Previous:  number(r.Previous),
			YoYChange: number(r.YoYChange),
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
