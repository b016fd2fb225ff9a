package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	publishs3 "github.com/de-tools/weekly-pulse/pkg/publish/s3"
	"github.com/de-tools/weekly-pulse/pkg/runtime/terminal/export"
	"github.com/de-tools/weekly-pulse/pkg/services/config"
	"github.com/de-tools/weekly-pulse/pkg/services/history"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/de-tools/weekly-pulse/pkg/store/duckdb"
	reportstore "github.com/de-tools/weekly-pulse/pkg/store/duckdb/report"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Renderer prints a built report in the requested format
type Renderer interface {
	Render(report *domain.WeeklyReport, format string) error
}

type Composer = publishs3.Composer

type ReportCmd struct {
	configPath string
	inputs     []string
	week       string
	dbPath     string
	format     string
	xlsxPath   string
	bucket     string
	prefix     string
	profile    string
	timeout    time.Duration

	now         func() time.Time
	newRenderer func(Composer) Renderer
}

func NewReportCmd(now func() time.Time, newRenderer func(Composer) Renderer) *cobra.Command {
	rc := &ReportCmd{now: now, newRenderer: newRenderer}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the weekly YoY report from exported raw rows",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Path to the report configuration (sources, metrics, reconciliations)")
	cmd.Flags().StringSliceVar(&rc.inputs, "input", nil, "Raw-row JSON bundle(s); repeat or comma-separate for several")
	cmd.Flags().StringVar(&rc.week, "week", "", "ISO week to report, e.g. 2025-W29 (default: last full week)")
	cmd.Flags().StringVar(&rc.dbPath, "db", "", "DuckDB file keeping report history; enables week-over-week trends")
	cmd.Flags().StringVar(&rc.format, "format", "text", "Output format: text, sheets, table or json")
	cmd.Flags().StringVar(&rc.xlsxPath, "xlsx", "", "Also write the report as an xlsx workbook")
	cmd.Flags().StringVar(&rc.bucket, "bucket", "", "Publish the report artifacts to this S3 bucket")
	cmd.Flags().StringVar(&rc.prefix, "prefix", publishs3.DefaultPrefix, "S3 key prefix")
	cmd.Flags().StringVar(&rc.profile, "aws-profile", "", "AWS shared config profile")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 2*time.Minute, "Overall timeout")

	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rc.timeout)
	defer cancel()
	logger := zerolog.Ctx(ctx)

	settings, err := config.LoadSettings(rc.configPath)
	if err != nil {
		return err
	}
	builder, err := report.NewBuilder(settings)
	if err != nil {
		return fmt.Errorf("failed to create report builder: %w", err)
	}

	req, err := ReadBundles(ctx, rc.inputs)
	if err != nil {
		return err
	}
	if rc.week != "" {
		req.Week = rc.week
	}
	in, err := adapters.MapReportRequestApiToInput(req, rc.now())
	if err != nil {
		return err
	}

	var hist history.Service
	if rc.dbPath != "" {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: rc.dbPath})
		if err != nil {
			return fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		defer db.Close()

		store, err := reportstore.NewStore(db)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
		hist = history.NewService(store)
		builder.WithHistory(hist)
	}

	weekly, err := builder.Build(ctx, in)
	if err != nil {
		return err
	}
	logger.Info().Str("report_id", weekly.ID).Str("week", weekly.Week.String()).Int("metrics", len(weekly.Metrics)).Msg("report built")

	if err := rc.newRenderer(builder).Render(weekly, rc.format); err != nil {
		return err
	}

	if rc.xlsxPath != "" {
		if err := writeWorkbook(rc.xlsxPath, weekly); err != nil {
			return err
		}
		logger.Info().Str("path", rc.xlsxPath).Msg("workbook written")
	}

	if hist != nil {
		if err := hist.Save(ctx, weekly); err != nil {
			return fmt.Errorf("failed to store report: %w", err)
		}
	}

	if rc.bucket != "" {
		return rc.publish(ctx, builder, weekly)
	}
	return nil
}

func writeWorkbook(path string, weekly *domain.WeeklyReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteXLSX(f, weekly); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (rc *ReportCmd) publish(ctx context.Context, composer Composer, weekly *domain.WeeklyReport) error {
	awsCfg, err := publishs3.LoadConfig(ctx, rc.profile)
	if err != nil {
		return err
	}
	publisher, err := publishs3.NewFromConfig(*awsCfg, rc.bucket, rc.prefix)
	if err != nil {
		return err
	}

	uris, err := publishs3.NewReportPublisher(publisher, composer).PublishReport(ctx, weekly)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		zerolog.Ctx(ctx).Info().Str("uri", uri).Msg("artifact published")
	}
	return nil
}
