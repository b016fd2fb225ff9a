package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet         = "Summary"
	MetricsSheet         = "Metrics"
	ReconciliationsSheet = "Reconciliation"
)

var (
	metricHeader         = []any{"Source", "Metric", "Kind", "Platform", "This Year", "Last Year", "YoY Change", "Trend", "Error"}
	reconciliationHeader = []any{"Reconciliation", "Channel", "Source A", "Source B", "Diff", "% Diff", "Category", "Unmatched"}
)

// cell leaves absent values as empty cells
func cell(n domain.Number) any {
	if !n.Valid {
		return nil
	}
	return n.Value
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Workbook builds an xlsx workbook with the summary text, one row per metric
// platform and one row per reconciled channel
func Workbook(report *domain.WeeklyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, err
	}

	var summaryRows [][]any
	for _, line := range strings.Split(report.Summary, "\n") {
		summaryRows = append(summaryRows, []any{line})
	}
	if err := writeRows(f, SummarySheet, summaryRows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(MetricsSheet); err != nil {
		return nil, err
	}
	metricRows := [][]any{metricHeader}
	for _, m := range report.Metrics {
		if m.Failed() {
			metricRows = append(metricRows, []any{m.Source, m.Metric, string(m.Kind), nil, nil, nil, nil, nil, m.Error})
			continue
		}
		for _, p := range domain.Platforms {
			s, ok := m.Breakdown[p]
			if !ok {
				continue
			}
			metricRows = append(metricRows, []any{
				m.Source, m.Metric, string(m.Kind), string(p),
				cell(s.Current), cell(s.Previous), cell(s.YoYChange),
				trendLabel(m.Trend[p]), nil,
			})
		}
	}
	if err := writeRows(f, MetricsSheet, metricRows); err != nil {
		return nil, err
	}

	if len(report.Reconciliations) > 0 {
		if _, err := f.NewSheet(ReconciliationsSheet); err != nil {
			return nil, err
		}
		recRows := [][]any{reconciliationHeader}
		for _, rec := range report.Reconciliations {
			for _, c := range append(append([]domain.ReconciliationResult{}, rec.Channels...), rec.Total) {
				recRows = append(recRows, []any{
					rec.Name, c.Channel,
					cell(c.SourceA), cell(c.SourceB), cell(c.Diff), cell(c.DiffPct),
					string(c.Category), c.Unmatched,
				})
			}
		}
		if err := writeRows(f, ReconciliationsSheet, recRows); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// WriteXLSX writes the report workbook to w
func WriteXLSX(w io.Writer, report *domain.WeeklyReport) error {
	f, err := Workbook(report)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func XLSXBytes(report *domain.WeeklyReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
