package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kofiasare/momo-sms-importer/pkg/deadletter"
	"github.com/kofiasare/momo-sms-importer/pkg/export"
	"github.com/kofiasare/momo-sms-importer/pkg/lookup"
	"github.com/kofiasare/momo-sms-importer/pkg/parser"
	"github.com/kofiasare/momo-sms-importer/pkg/processor"
	"github.com/kofiasare/momo-sms-importer/pkg/repo"
)

func main() {
	_ = godotenv.Load()

	xmlPath := flag.String("xml", envOr("MOMO_XML_PATH", "data/raw/momo.xml"),
		"path to the SMS export")
	dashboardPath := flag.String("dashboard", envOr("DASHBOARD_JSON_PATH", "data/processed/dashboard.json"),
		"path for the dashboard export")
	flag.Parse()

	ctx := log.Logger.WithContext(context.Background())

	db, err := gorm.Open(postgres.Open(os.Getenv("POSTGRES_CONNECTION_STRING")), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	dataRepo := repo.NewPostgres(db)
	if err = dataRepo.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	data, err := os.ReadFile(*xmlPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *xmlPath).Msg("failed to read input")
	}

	sink := deadletter.NewSink()
	index := lookup.NewIndex()

	proc := processor.NewProcessor(&processor.Config{
		Repo:      dataRepo,
		Extractor: parser.NewExtractor(),
		Sink:      sink,
		Index:     index,
	})

	summary, err := proc.Run(ctx, data)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline run failed")
	}

	if err = writeDashboard(ctx, dataRepo, sink, summary, *dashboardPath); err != nil {
		log.Fatal().Err(err).Msg("failed to write dashboard export")
	}

	log.Info().
		Int("extracted", summary.Extracted).
		Int("persisted", summary.Persisted).
		Int("dead_lettered", summary.DeadLettered).
		Int("errors", summary.Errored).
		Int("warnings", summary.Warnings).
		Int("indexed", index.Len()).
		Msg("pipeline run completed")
}

func writeDashboard(
	ctx context.Context,
	dataRepo *repo.Postgres,
	sink *deadletter.Sink,
	summary *processor.Summary,
	path string,
) error {
	users, err := dataRepo.ListUsers(ctx)
	if err != nil {
		return err
	}

	categories, err := dataRepo.ListCategories(ctx)
	if err != nil {
		return err
	}

	transactions, err := dataRepo.ListTransactions(ctx)
	if err != nil {
		return err
	}

	links, err := dataRepo.ListTransactionCategories(ctx)
	if err != nil {
		return err
	}

	logs, err := dataRepo.ListLogs(ctx)
	if err != nil {
		return err
	}

	return export.WriteFile(path, export.Build(export.Snapshot{
		Users:                   users,
		Categories:              categories,
		Transactions:            transactions,
		CategoriesByTransaction: links,
		Logs:                    logs,
		DeadLetters:             sink.Entries(),
		Summary:                 summary,
	}))
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return fallback
}
