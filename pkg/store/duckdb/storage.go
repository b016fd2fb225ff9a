package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const WeeklyReportsSchema = `
	CREATE TABLE IF NOT EXISTS weekly_reports (
		id VARCHAR NOT NULL PRIMARY KEY,
		iso_year INTEGER NOT NULL,
		iso_week INTEGER NOT NULL,
		range_start DATE NOT NULL,
		range_end DATE NOT NULL,
		generated_at TIMESTAMP NOT NULL,
		summary VARCHAR,
		payload VARCHAR
	);
`
const MetricResultsSchema = `
	CREATE TABLE IF NOT EXISTS metric_results (
		report_id VARCHAR NOT NULL,
		source VARCHAR NOT NULL,
		metric VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		platform VARCHAR NOT NULL,
		current_value DOUBLE NULL,
		previous_value DOUBLE NULL,
		yoy_change DOUBLE NULL,
		PRIMARY KEY (report_id, source, metric, platform)
	);
`

var bootQueries = []string{
	WeeklyReportsSchema,
	MetricResultsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
