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

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repos := app.NewRepositories(db)
	svc := app.NewEnrichmentService(repos, logger)

	ranks, err := svc.RecomputeMatchupRanks(ctx, cfg.Season)
	if err != nil {
		logger.Warn("recompute matchup ranks failed", "season", cfg.Season, "error", err)
	} else {
		logger.Info("matchup ranks recomputed", "season", cfg.Season, "ranks", ranks)
	}

	report, err := svc.Run(ctx, usecase.EnrichmentConfig{
		PageSize:  cfg.PageSize,
		PageDelay: cfg.PageDelay,
		Workers:   cfg.EnrichWorkers,
	})
	logger.Info("enrichment run finished",
		"combos_processed", report.CombosProcessed,
		"combos_skipped", report.CombosSkipped,
		"combos_failed", report.CombosFailed,
		"duration", report.Ended.Sub(report.Started).String(),
	)
	if err != nil {
		logger.Error("enrichment run failed", "error", err)
		os.Exit(1)
	}
}
