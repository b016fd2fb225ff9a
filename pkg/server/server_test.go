package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/api"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/history"
	"github.com/de-tools/weekly-pulse/pkg/services/normalize"
	"github.com/de-tools/weekly-pulse/pkg/services/reconcile"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/de-tools/weekly-pulse/pkg/store/duckdb"
	reportstore "github.com/de-tools/weekly-pulse/pkg/store/duckdb/report"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportRequest = `{
  "week": "2025-W29",
  "feeds": [{
    "source": "amplitude",
    "metric": "sessions",
    "current": [
      {"segment": "Apps", "period": "2025-07-14", "value": 4074},
      {"segment": "Web", "period": "2025-07-14", "value": 12808}
    ],
    "previous": [
      {"segment": "Apps", "period": "2024-07-15", "value": 41014},
      {"segment": "Web", "period": "2024-07-15", "value": 174835}
    ]
  }]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	builder, err := report.NewBuilder(report.Settings{
		Sources: []normalize.Source{{
			Name:       "amplitude",
			Capability: normalize.ManualComparison,
			Segments:   normalize.SegmentMap{"Apps": domain.PlatformApps, "Web": domain.PlatformWeb},
		}},
		Metrics:   []report.MetricDefinition{{Source: "amplitude", Name: "sessions", Kind: domain.KindVolume}},
		Reconcile: reconcile.DefaultSettings(),
	})
	require.NoError(t, err)

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := reportstore.NewStore(db)
	require.NoError(t, err)
	hist := history.NewService(store)
	builder.WithHistory(hist)

	router := ConfigureRouter(Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Builder: builder,
			History: hist,
			Now:     func() time.Time { return time.Date(2025, 7, 23, 9, 0, 0, 0, time.UTC) },
			Logger:  zerolog.New(zerolog.NewTestWriter(t)),
		},
	})
	testServer := httptest.NewServer(router)
	t.Cleanup(testServer.Close)
	return testServer
}

func unmarshalResponse[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	var response T
	require.NoError(t, json.Unmarshal(body, &response), "Failed to parse response")
	return response
}

func TestWebAPI_Endpoints(t *testing.T) {
	testServer := newTestServer(t)

	resp, err := http.Post(testServer.URL+"/api/v1/reports", "application/json", bytes.NewBufferString(reportRequest))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := unmarshalResponse[api.Report](t, resp)
	assert.Contains(t, created.Summary, "Week 29")
	assert.Contains(t, created.Summary, "2025-07-14 to 2025-07-20")
	assert.Contains(t, created.Summary, "-92.2%")
	require.Len(t, created.Metrics, 1)
	combined := created.Metrics[0].Platforms[2]
	assert.Equal(t, "combined", combined.Platform)
	assert.Equal(t, 16882.0, *combined.Current)
	assert.Equal(t, 215849.0, *combined.Previous)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		check          func(t *testing.T, resp *http.Response)
	}{
		{
			name:           "GetStoredReport",
			path:           "/api/v1/reports/2025/29",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				stored := unmarshalResponse[api.Report](t, resp)
				assert.Equal(t, created.ID, stored.ID)
				assert.Equal(t, created.Summary, stored.Summary)
			},
		},
		{
			name:           "GetMissingReport",
			path:           "/api/v1/reports/2025/30",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "ListReports",
			path:           "/api/v1/reports",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				list := unmarshalResponse[[]api.ReportSummary](t, resp)
				require.Len(t, list, 1)
				assert.Equal(t, "2025-W29", list[0].Week)
			},
		},
		{
			name:           "CurrentWeek",
			path:           "/api/v1/weeks/current",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				w := unmarshalResponse[api.WeekResponse](t, resp)
				assert.Equal(t, "2025-W29", w.Label)
				assert.Equal(t, "2024-07-15", w.PreviousYear.Range.Start)
			},
		},
		{
			name:           "InvalidWeek",
			path:           "/api/v1/weeks/2025/0",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")
			if tc.check != nil {
				tc.check(t, resp)
			}
		})
	}
}
