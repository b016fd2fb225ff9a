package normalize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var amplitude = Source{
	Name:       "amplitude",
	Capability: ManualComparison,
	Segments: SegmentMap{
		"Apps Only": domain.PlatformApps,
		"Web Only":  domain.PlatformWeb,
		"App + Web": domain.PlatformCombined,
	},
}

var ga4 = Source{
	Name:       "ga4",
	Capability: NativeComparison,
	Segments: SegmentMap{
		"app": domain.PlatformApps,
		"web": domain.PlatformWeb,
	},
}

func week29() Target {
	return Target{
		Current: domain.DateRange{
			Start: time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		},
		Previous: domain.DateRange{
			Start: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 7, 21, 0, 0, 0, 0, time.UTC),
		},
	}
}

func manualFeed() Feed {
	return Feed{
		Current: []domain.RawMetricRow{
			{Segment: "Apps Only", Period: "2025-07-07T00:00:00", Value: 5000},
			{Segment: "Apps Only", Period: "2025-07-14T00:00:00", Value: 4074},
			{Segment: "Web Only", Period: "2025-07-07T00:00:00", Value: 13000},
			{Segment: "Web Only", Period: "2025-07-14T00:00:00", Value: 12808},
			{Segment: "Tablet", Period: "2025-07-14T00:00:00", Value: 12},
		},
		Previous: []domain.RawMetricRow{
			{Segment: "Apps Only", Period: "2024-07-15T00:00:00", Value: 41014},
			{Segment: "Web Only", Period: "2024-07-15T00:00:00", Value: 174835},
			{Segment: "Apps Only", Period: "2024-07-22T00:00:00", Value: 40000},
		},
	}
}

func TestNew(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)
	assert.IsType(t, &manualNormalizer{}, n)

	n, err = New(ga4)
	require.NoError(t, err)
	assert.IsType(t, &nativeNormalizer{}, n)

	_, err = New(Source{Name: "x", Capability: "magic", Segments: SegmentMap{"a": domain.PlatformApps}})
	assert.Error(t, err)

	_, err = New(Source{Name: "x", Capability: NativeComparison})
	assert.Error(t, err)

	_, err = New(Source{Capability: NativeComparison, Segments: SegmentMap{"a": domain.PlatformApps}})
	assert.Error(t, err)
}

func TestManual_LocatesTargetWeekInEachFeed(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)

	res, err := n.Normalize("sessions", manualFeed(), week29())
	require.NoError(t, err)

	assert.Equal(t, domain.Pair{Current: domain.Some(4074), Previous: domain.Some(41014)}, res.Values[domain.PlatformApps])
	assert.Equal(t, domain.Pair{Current: domain.Some(12808), Previous: domain.Some(174835)}, res.Values[domain.PlatformWeb])
	_, hasCombined := res.Values[domain.PlatformCombined]
	assert.False(t, hasCombined)
}

func TestManual_UnrecognizedSegmentIsDiagnosed(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)

	res, err := n.Normalize("sessions", manualFeed(), week29())
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "Tablet", res.Diagnostics[0].Segment)
	assert.Equal(t, "amplitude", res.Diagnostics[0].Source)
}

func TestManual_NoSubstringMatching(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)

	feed := Feed{
		Current:  []domain.RawMetricRow{{Segment: "Apps Only (beta)", Period: "2025-07-14", Value: 1}},
		Previous: []domain.RawMetricRow{{Segment: "Apps Only", Period: "2024-07-15", Value: 2}},
	}
	res, err := n.Normalize("sessions", feed, week29())
	require.NoError(t, err)

	assert.False(t, res.Values[domain.PlatformApps].Current.Valid)
	assert.True(t, res.Values[domain.PlatformApps].Previous.Valid)
}

func TestManual_MissingPeriod(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)

	t.Run("current feed", func(t *testing.T) {
		feed := manualFeed()
		feed.Current = feed.Current[:1]

		_, err := n.Normalize("sessions", feed, week29())
		var missing *domain.MissingPeriodError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "current", missing.Feed)
		assert.Equal(t, "2025-07-14", missing.Label)
	})

	t.Run("previous feed does not fall back to an adjacent week", func(t *testing.T) {
		feed := manualFeed()
		feed.Previous = feed.Previous[2:]

		_, err := n.Normalize("sessions", feed, week29())
		var missing *domain.MissingPeriodError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "previous", missing.Feed)
		assert.Equal(t, "2024-07-15", missing.Label)
	})
}

func TestManual_DuplicateRowsKeepFirst(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)

	feed := manualFeed()
	feed.Current = append(feed.Current, domain.RawMetricRow{Segment: "Apps Only", Period: "2025-07-14", Value: 1})

	res, err := n.Normalize("sessions", feed, week29())
	require.NoError(t, err)
	assert.Equal(t, 4074.0, res.Values[domain.PlatformApps].Current.Value)
	assert.Len(t, res.Diagnostics, 2)
}

func TestManual_Idempotent(t *testing.T) {
	n, err := New(amplitude)
	require.NoError(t, err)

	a, err := n.Normalize("sessions", manualFeed(), week29())
	require.NoError(t, err)
	b, err := n.Normalize("sessions", manualFeed(), week29())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	for p := range a.Values {
		assert.Equal(t, math.Float64bits(a.Values[p].Current.Value), math.Float64bits(b.Values[p].Current.Value))
	}
}

func TestNative_ReadsPairedValues(t *testing.T) {
	n, err := New(ga4)
	require.NoError(t, err)

	feed := Feed{
		Current: []domain.RawMetricRow{
			{Segment: "app", Value: 54054, Comparison: domain.Some(60000)},
			{Segment: "web", Period: "2025-07-14", Value: 149215, Comparison: domain.Some(155491)},
			{Segment: "web", Period: "2025-07-07", Value: 1, Comparison: domain.Some(1)},
			{Segment: "tv", Value: 3},
		},
	}

	res, err := n.Normalize("sessions", feed, week29())
	require.NoError(t, err)

	assert.Equal(t, domain.Pair{Current: domain.Some(54054), Previous: domain.Some(60000)}, res.Values[domain.PlatformApps])
	assert.Equal(t, domain.Pair{Current: domain.Some(149215), Previous: domain.Some(155491)}, res.Values[domain.PlatformWeb])
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "tv", res.Diagnostics[0].Segment)
}

func TestNative_MissingComparisonStaysAbsent(t *testing.T) {
	n, err := New(ga4)
	require.NoError(t, err)

	res, err := n.Normalize("sessions", Feed{
		Current: []domain.RawMetricRow{{Segment: "app", Value: 10}},
	}, week29())
	require.NoError(t, err)
	assert.False(t, res.Values[domain.PlatformApps].Previous.Valid)
}

func TestNative_StrictTargetSkipsRowsWithoutPeriod(t *testing.T) {
	n, err := New(ga4)
	require.NoError(t, err)

	feed := Feed{
		Current: []domain.RawMetricRow{
			{Segment: "app", Value: 120, Comparison: domain.Some(100)},
			{Segment: "web", Period: "2025-07-14", Value: 90, Comparison: domain.Some(80)},
		},
	}
	target := week29()
	target.Strict = true

	res, err := n.Normalize("purchases", feed, target)
	require.NoError(t, err)
	_, hasApps := res.Values[domain.PlatformApps]
	assert.False(t, hasApps)
	assert.Equal(t, domain.Pair{Current: domain.Some(90), Previous: domain.Some(80)}, res.Values[domain.PlatformWeb])
}

func TestNative_PreviousFeedIgnoredWithDiagnostic(t *testing.T) {
	n, err := New(ga4)
	require.NoError(t, err)

	res, err := n.Normalize("sessions", Feed{
		Current:  []domain.RawMetricRow{{Segment: "app", Value: 10}},
		Previous: []domain.RawMetricRow{{Segment: "app", Value: 8}},
	}, week29())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Empty(t, res.Diagnostics[0].Segment)
}

func TestMatchesPeriod(t *testing.T) {
	assert.True(t, matchesPeriod("2025-07-14", "2025-07-14"))
	assert.True(t, matchesPeriod("2025-07-14T00:00:00", "2025-07-14"))
	assert.True(t, matchesPeriod(`"2025-07-14T00:00:00"`, "2025-07-14"))
	assert.True(t, matchesPeriod(" 2025-07-14 00:00", "2025-07-14"))
	assert.False(t, matchesPeriod("2025-07-141", "2025-07-14"))
	assert.False(t, matchesPeriod("2025-07-15", "2025-07-14"))
	assert.False(t, matchesPeriod("", "2025-07-14"))
}
