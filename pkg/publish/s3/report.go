package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/runtime/terminal/export"
	"github.com/de-tools/weekly-pulse/pkg/services/summary"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Composer renders a built report in another summary format
type Composer interface {
	Compose(report *domain.WeeklyReport, format summary.Format) (string, error)
}

// ReportPublisher uploads every rendered form of a report
type ReportPublisher struct {
	publisher *Publisher
	composer  Composer
}

func NewReportPublisher(publisher *Publisher, composer Composer) *ReportPublisher {
	return &ReportPublisher{publisher: publisher, composer: composer}
}

// Artifacts renders the JSON report, both summary formats and the xlsx workbook
func (rp *ReportPublisher) Artifacts(weekly *domain.WeeklyReport) ([]Artifact, error) {
	res, err := adapters.MapWeeklyReportDomainToApi(weekly)
	if err != nil {
		return nil, err
	}
	var payload bytes.Buffer
	enc := json.NewEncoder(&payload)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	sheets, err := rp.composer.Compose(weekly, summary.FormatSheets)
	if err != nil {
		return nil, err
	}

	xlsx, err := export.XLSXBytes(weekly)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{Name: "report.json", ContentType: contentTypeJSON, Body: payload.Bytes()},
		{Name: "summary.txt", ContentType: contentTypeText, Body: []byte(weekly.Summary)},
		{Name: "summary-sheets.txt", ContentType: contentTypeText, Body: []byte(sheets)},
		{Name: "report.xlsx", ContentType: contentTypeXLSX, Body: xlsx},
	}, nil
}

func (rp *ReportPublisher) PublishReport(ctx context.Context, weekly *domain.WeeklyReport) ([]string, error) {
	artifacts, err := rp.Artifacts(weekly)
	if err != nil {
		return nil, err
	}
	return rp.publisher.Publish(ctx, weekly.Week, weekly.ID, artifacts)
}
