package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/prop-insights/internal/app"
	"github.com/riskibarqy/prop-insights/internal/config"
	"github.com/riskibarqy/prop-insights/internal/observability"
	"github.com/riskibarqy/prop-insights/internal/platform/logging"
	"github.com/riskibarqy/prop-insights/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = shutdownUptrace(context.Background())
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = stopPyroscope()
	}()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repos := app.NewRepositories(db)
	if err := app.SeedLeagues(ctx, repos.Leagues); err != nil {
		logger.Error("seed leagues", "error", err)
		os.Exit(1)
	}

	svc := app.NewIngestionService(cfg, repos, logger)

	report, err := svc.Run(ctx, usecase.IngestionConfig{
		Leagues:          cfg.Leagues,
		StartDate:        cfg.StartDate,
		Days:             cfg.Days,
		Direction:        cfg.Direction,
		Workers:          cfg.Workers,
		RequestDelay:     cfg.RequestDelay,
		FailureThreshold: cfg.FailureThreshold,
		GameTimeout:      cfg.FetchTimeout,
		DryRun:           cfg.DryRun,
	})
	if err != nil {
		logger.Error("ingestion run failed", "error", err)
	}

	for _, lr := range report.Leagues {
		logger.Info("league ingestion finished",
			"league", lr.LeagueCode,
			"dates_fetched", lr.DatesFetched,
			"games_seen", lr.GamesSeen,
			"games_ingested", lr.GamesIngested,
			"games_skipped", lr.GamesSkipped,
			"logs_inserted", lr.LogsInserted,
			"failures", lr.Failures,
			"aborted", lr.Aborted,
		)
	}
	logger.Info("ingestion run finished",
		"leagues", len(report.Leagues),
		"duration", report.Ended.Sub(report.Started).String(),
		"dry_run", cfg.DryRun,
	)

	if err != nil {
		os.Exit(1)
	}
}
