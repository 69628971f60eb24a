package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/prop-insights/external/statsfeed"
	"github.com/riskibarqy/prop-insights/internal/config"
	"github.com/riskibarqy/prop-insights/internal/domain/league"
	"github.com/riskibarqy/prop-insights/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prop-insights/internal/platform/logging"
	"github.com/riskibarqy/prop-insights/internal/platform/resilience"
	"github.com/riskibarqy/prop-insights/internal/usecase"
)

// knownLeagues is the fixed set of competitions the pipeline understands.
// Adding a league here requires a matching normalizer registration.
var knownLeagues = []league.League{
	{Code: "nba", Name: "National Basketball Association", Sport: "basketball"},
	{Code: "wnba", Name: "Women's National Basketball Association", Sport: "basketball"},
	{Code: "nfl", Name: "National Football League", Sport: "football"},
	{Code: "mlb", Name: "Major League Baseball", Sport: "baseball"},
	{Code: "nhl", Name: "National Hockey League", Sport: "hockey"},
}

// Repositories bundles every persistence gateway the services need.
type Repositories struct {
	Leagues   *postgres.LeagueRepository
	Teams     *postgres.TeamRepository
	Players   *postgres.PlayerRepository
	Games     *postgres.GameRepository
	GameLogs  *postgres.GameLogRepository
	Offerings *postgres.PropOfferingRepository
	Matchups  *postgres.MatchupRankRepository
	Analytics *postgres.PlayerAnalyticsRepository
	Raw       *postgres.RawPayloadRepository
}

func NewRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Leagues:   postgres.NewLeagueRepository(db),
		Teams:     postgres.NewTeamRepository(db),
		Players:   postgres.NewPlayerRepository(db),
		Games:     postgres.NewGameRepository(db),
		GameLogs:  postgres.NewGameLogRepository(db),
		Offerings: postgres.NewPropOfferingRepository(db),
		Matchups:  postgres.NewMatchupRankRepository(db),
		Analytics: postgres.NewPlayerAnalyticsRepository(db),
		Raw:       postgres.NewRawPayloadRepository(db),
	}
}

// SeedLeagues upserts the known league rows so ingestion runs never race a
// manual setup step.
func SeedLeagues(ctx context.Context, repo league.Repository) error {
	for _, l := range knownLeagues {
		if err := repo.Ensure(ctx, l); err != nil {
			return fmt.Errorf("seed league %s: %w", l.Code, err)
		}
	}

	return nil
}

// NewIngestionService wires the provider client, resolver, and repositories
// into an ingestion run.
func NewIngestionService(cfg config.Config, repos Repositories, logger *logging.Logger) *usecase.IngestionService {
	client := statsfeed.NewClient(statsfeed.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.FetchTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:    cfg.ProviderBaseURL,
		APIKey:     cfg.ProviderToken,
		Timeout:    cfg.FetchTimeout,
		Retry: resilience.RetryPolicy{
			MaxAttempts: cfg.ProviderMaxRetries,
			BaseDelay:   cfg.RequestDelay,
			Jitter:      true,
		},
		Logger: logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ProviderCircuitEnabled,
			FailureThreshold: cfg.ProviderCircuitFailures,
			OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenMax,
		},
	})

	resolver := usecase.NewResolverService(repos.Teams, repos.Players, logger)

	return usecase.NewIngestionService(
		client,
		statsfeed.IsTransient,
		resolver,
		repos.Leagues,
		repos.Games,
		repos.GameLogs,
		repos.Offerings,
		repos.Raw,
		logger,
	)
}

func NewEnrichmentService(repos Repositories, logger *logging.Logger) *usecase.EnrichmentService {
	return usecase.NewEnrichmentService(
		repos.GameLogs,
		repos.Analytics,
		repos.Matchups,
		repos.Offerings,
		repos.Teams,
		repos.Leagues,
		logger,
	)
}
