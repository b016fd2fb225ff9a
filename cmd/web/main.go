package main

import (
	"fmt"
	"net"
	"os"

	publishs3 "github.com/de-tools/weekly-pulse/pkg/publish/s3"
	"github.com/de-tools/weekly-pulse/pkg/server"
	"github.com/de-tools/weekly-pulse/pkg/services/config"
	"github.com/de-tools/weekly-pulse/pkg/services/history"
	"github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/de-tools/weekly-pulse/pkg/store/duckdb"
	reportstore "github.com/de-tools/weekly-pulse/pkg/store/duckdb/report"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the weekly report web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "weekly-pulse.yaml",
		"Path to the report configuration (sources, metrics, reconciliations)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load report configuration: %w", err)
	}
	builder, err := report.NewBuilder(settings)
	if err != nil {
		return fmt.Errorf("failed to create report builder: %w", err)
	}

	logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	for _, src := range settings.Sources {
		logger.Info().Msgf("Source: `%s`, comparison: `%s`", src.Name, src.Capability)
	}

	dbPath := os.Getenv("REPORT_DB_PATH")
	if dbPath == "" {
		dbPath = "weekly-pulse.db"
	}
	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: dbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	store, err := reportstore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}
	hist := history.NewService(store)
	builder.WithHistory(hist)

	reports, err := hist.List(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to read report history: %w", err)
	}
	if len(reports) > 0 {
		logger.Info().Msgf("Latest stored report: %s (%s)", reports[0].Week, reports[0].ID)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	deps := server.Dependencies{
		Builder: builder,
		History: hist,
		Logger:  logger,
	}

	if bucket := os.Getenv("REPORT_BUCKET"); bucket != "" {
		awsCfg, err := publishs3.LoadConfig(ctx, os.Getenv("AWS_PROFILE"))
		if err != nil {
			return err
		}
		publisher, err := publishs3.NewFromConfig(*awsCfg, bucket, os.Getenv("REPORT_PREFIX"))
		if err != nil {
			return fmt.Errorf("failed to create report publisher: %w", err)
		}
		deps.Publisher = publishs3.NewReportPublisher(publisher, builder)
		logger.Info().Msgf("Reports will be published to s3://%s", bucket)
	}

	api := server.NewWebAPI(server.Config{
		Addr:         net.JoinHostPort(host, port),
		Dependencies: deps,
	})

	return api.Start()
}
