package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/weekly-pulse/pkg/models/store"
	"github.com/de-tools/weekly-pulse/pkg/store/duckdb"
)

var ErrNotFound = errors.New("report not found")

// Store keeps the history of generated reports. The latest report of a week is
// the one with the most recent generated_at.
type Store interface {
	Save(ctx context.Context, report store.Report, metrics []store.MetricResult) error
	GetLatest(ctx context.Context, identity store.ReportIdentity) (*store.Report, error)
	GetMetrics(ctx context.Context, identity store.ReportIdentity) ([]store.MetricResult, error)
	List(ctx context.Context, limit int) ([]store.Report, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{
		db: db,
	}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *reportStore) Save(ctx context.Context, report store.Report, metrics []store.MetricResult) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		var exec execer = duckdb.GetTransaction(ctx)

		_, err := exec.ExecContext(ctx, `
			INSERT INTO weekly_reports (
				id, iso_year, iso_week, range_start, range_end, generated_at, summary, payload
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID,
			report.Year,
			report.Week,
			report.RangeStart,
			report.RangeEnd,
			report.GeneratedAt,
			report.Summary,
			string(report.Payload),
		)
		if err != nil {
			return fmt.Errorf("insert report: %w", err)
		}

		for _, m := range metrics {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO metric_results (
					report_id, source, metric, kind, platform, current_value, previous_value, yoy_change
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				report.ID,
				m.Source,
				m.Metric,
				m.Kind,
				m.Platform,
				nullable(m.Current),
				nullable(m.Previous),
				nullable(m.YoYChange),
			)
			if err != nil {
				return fmt.Errorf("insert metric result %s/%s/%s: %w", m.Source, m.Metric, m.Platform, err)
			}
		}
		return nil
	})
}

func (s *reportStore) GetLatest(ctx context.Context, identity store.ReportIdentity) (*store.Report, error) {
	query := `
		SELECT id, iso_year, iso_week, range_start, range_end, generated_at, summary, payload
		FROM weekly_reports
		WHERE iso_year = ? AND iso_week = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`
	rows, err := s.db.QueryContext(ctx, query, identity.Year, identity.Week)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return &reports[0], nil
}

func (s *reportStore) GetMetrics(ctx context.Context, identity store.ReportIdentity) ([]store.MetricResult, error) {
	query := `
		SELECT m.report_id, m.source, m.metric, m.kind, m.platform, m.current_value, m.previous_value, m.yoy_change
		FROM metric_results m
		WHERE m.report_id = (
			SELECT id FROM weekly_reports
			WHERE iso_year = ? AND iso_week = ?
			ORDER BY generated_at DESC
			LIMIT 1
		)
		ORDER BY m.source, m.metric, m.platform
	`
	rows, err := s.db.QueryContext(ctx, query, identity.Year, identity.Week)
	if err != nil {
		return nil, fmt.Errorf("query metric results: %w", err)
	}
	defer rows.Close()

	results := make([]store.MetricResult, 0)
	for rows.Next() {
		var (
			m                    store.MetricResult
			cur, prev, yoyChange sql.NullFloat64
		)
		if err := rows.Scan(&m.ReportID, &m.Source, &m.Metric, &m.Kind, &m.Platform, &cur, &prev, &yoyChange); err != nil {
			return nil, fmt.Errorf("scan metric result: %w", err)
		}
		m.Current = pointer(cur)
		m.Previous = pointer(prev)
		m.YoYChange = pointer(yoyChange)
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *reportStore) List(ctx context.Context, limit int) ([]store.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, iso_year, iso_week, range_start, range_end, generated_at, summary, payload
		FROM weekly_reports
		ORDER BY iso_year DESC, iso_week DESC, generated_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func scanReports(rows *sql.Rows) ([]store.Report, error) {
	reports := make([]store.Report, 0)
	for rows.Next() {
		var (
			r       store.Report
			summary sql.NullString
			payload sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Year, &r.Week, &r.RangeStart, &r.RangeEnd, &r.GeneratedAt, &summary, &payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Summary = summary.String
		if payload.Valid {
			r.Payload = []byte(payload.String)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func pointer(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
