package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/prop-insights/internal/domain/game"
	"github.com/riskibarqy/prop-insights/internal/domain/gamelog"
	"github.com/riskibarqy/prop-insights/internal/domain/league"
	"github.com/riskibarqy/prop-insights/internal/domain/propoffer"
	"github.com/riskibarqy/prop-insights/internal/domain/rawdata"
	"github.com/riskibarqy/prop-insights/internal/normalize"
	"github.com/riskibarqy/prop-insights/internal/platform/logging"
)

// ExternalGame is one scheduled matchup as reported by the stats provider.
type ExternalGame struct {
	ExternalRef string
	HomeAbbr    string
	AwayAbbr    string
	Season      string
	StartsAt    time.Time
}

// StatsProvider fetches schedules and boxscores. FetchSchedule also returns
// the verbatim response body so the coordinator can archive it.
type StatsProvider interface {
	FetchSchedule(ctx context.Context, leagueCode string, date time.Time) ([]ExternalGame, []byte, error)
	FetchBoxScore(ctx context.Context, leagueCode, gameRef string) ([]byte, error)
}

// TransientChecker reports whether a provider error is retry-worthy. The
// coordinator uses it to decide which failures count toward a league abort.
type TransientChecker func(error) bool

const (
	defaultIngestWorkers    = 4
	defaultRequestDelay     = 250 * time.Millisecond
	defaultFailureThreshold = 10
	defaultGameTimeout      = 45 * time.Second
	defaultLineFallback     = 0.5
)

// IngestionConfig controls one ingestion run.
type IngestionConfig struct {
	Leagues          []string
	StartDate        time.Time
	Days             int
	Direction        string // "forward" or "backward"
	Workers          int
	RequestDelay     time.Duration
	FailureThreshold int
	GameTimeout      time.Duration
	DryRun           bool
}

func (c *IngestionConfig) normalize() error {
	if len(c.Leagues) == 0 {
		return fmt.Errorf("%w: at least one league is required", ErrInvalidInput)
	}
	for i, code := range c.Leagues {
		c.Leagues[i] = strings.ToLower(strings.TrimSpace(code))
		if c.Leagues[i] == "" {
			return fmt.Errorf("%w: empty league code", ErrInvalidInput)
		}
	}
	if c.StartDate.IsZero() {
		c.StartDate = time.Now().UTC()
	}
	if c.Days < 1 {
		c.Days = 1
	}
	switch c.Direction {
	case "", "backward":
		c.Direction = "backward"
	case "forward":
	default:
		return fmt.Errorf("%w: direction must be forward or backward", ErrInvalidInput)
	}
	if c.Workers < 1 {
		c.Workers = defaultIngestWorkers
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = defaultRequestDelay
	}
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.GameTimeout <= 0 {
		c.GameTimeout = defaultGameTimeout
	}
	return nil
}

// LeagueReport summarizes one league's portion of a run.
type LeagueReport struct {
	LeagueCode    string
	DatesFetched  int
	GamesSeen     int
	GamesIngested int
	GamesSkipped  int
	LogsInserted  int
	Failures      int
	Aborted       bool
}

// IngestReport aggregates per-league results for one run.
type IngestReport struct {
	Leagues []LeagueReport
	Started time.Time
	Ended   time.Time
}

// IngestionService walks a date range per league, fetches each date's slate,
// and dispatches boxscore work to a bounded pool. Leagues are processed
// sequentially; games within a date fan out. A league whose schedule fetches
// fail too many times in a row is abandoned without touching the others.
type IngestionService struct {
	provider    StatsProvider
	isTransient TransientChecker
	resolver    *ResolverService
	leagueRepo  league.Repository
	gameRepo    game.Repository
	logRepo     gamelog.Repository
	offerRepo   propoffer.Repository
	rawRepo     rawdata.Repository
	logger      *logging.Logger
}

func NewIngestionService(
	provider StatsProvider,
	isTransient TransientChecker,
	resolver *ResolverService,
	leagueRepo league.Repository,
	gameRepo game.Repository,
	logRepo gamelog.Repository,
	offerRepo propoffer.Repository,
	rawRepo rawdata.Repository,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if isTransient == nil {
		isTransient = func(error) bool { return true }
	}

	return &IngestionService{
		provider:    provider,
		isTransient: isTransient,
		resolver:    resolver,
		leagueRepo:  leagueRepo,
		gameRepo:    gameRepo,
		logRepo:     logRepo,
		offerRepo:   offerRepo,
		rawRepo:     rawRepo,
		logger:      logger,
	}
}

// Run executes one ingestion pass. The returned report is valid even when an
// error is returned; a single league aborting does not fail the run.
func (s *IngestionService) Run(ctx context.Context, cfg IngestionConfig) (IngestReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Run")
	defer span.End()

	report := IngestReport{Started: time.Now().UTC()}
	if err := cfg.normalize(); err != nil {
		return report, err
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return report, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	for _, code := range cfg.Leagues {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		lr, leagueErr := s.runLeague(ctx, pool, code, cfg)
		report.Leagues = append(report.Leagues, lr)
		if leagueErr != nil && !lr.Aborted {
			report.Ended = time.Now().UTC()
			return report, leagueErr
		}
	}

	report.Ended = time.Now().UTC()
	return report, nil
}

func (s *IngestionService) runLeague(ctx context.Context, pool *ants.Pool, code string, cfg IngestionConfig) (LeagueReport, error) {
	lr := LeagueReport{LeagueCode: code}

	if _, ok, err := s.leagueRepo.GetByCode(ctx, code); err != nil {
		return lr, fmt.Errorf("load league %s: %w", code, err)
	} else if !ok {
		return lr, fmt.Errorf("%w: league %s is not configured", ErrNotFound, code)
	}

	if _, ok := normalize.ForLeague(code); !ok {
		return lr, fmt.Errorf("%w: no stat normalizer for league %s", ErrInvalidInput, code)
	}

	consecutiveFailures := 0
	for day := 0; day < cfg.Days; day++ {
		if ctx.Err() != nil {
			return lr, ctx.Err()
		}

		offset := day
		if cfg.Direction == "backward" {
			offset = -day
		}
		date := cfg.StartDate.AddDate(0, 0, offset)

		slate, raw, err := s.provider.FetchSchedule(ctx, code, date)
		if err != nil {
			lr.Failures++
			if !s.isTransient(err) {
				// Permanent failures (bad request, missing slate) are not a
				// provider outage signal. Log and move to the next date.
				s.logger.WarnContext(ctx, "schedule fetch failed permanently",
					"league", code,
					"date", date.Format("2006-01-02"),
					"error", err,
				)
				continue
			}
			consecutiveFailures++
			s.logger.WarnContext(ctx, "schedule fetch failed",
				"league", code,
				"date", date.Format("2006-01-02"),
				"consecutive_failures", consecutiveFailures,
				"error", err,
			)
			if consecutiveFailures >= cfg.FailureThreshold {
				lr.Aborted = true
				s.logger.ErrorContext(ctx, "league abandoned after repeated schedule failures",
					"league", code,
					"threshold", cfg.FailureThreshold,
				)
				return lr, err
			}
			continue
		}
		consecutiveFailures = 0
		lr.DatesFetched++

		if len(raw) > 0 && !cfg.DryRun {
			payload := rawdata.BuildPayload("statsfeed", "schedule", code+":"+date.Format("20060102"), code, "", raw)
			if perr := s.rawRepo.UpsertMany(ctx, []rawdata.Payload{payload}); perr != nil {
				s.logger.WarnContext(ctx, "archive schedule payload failed", "league", code, "error", perr)
			}
		}

		s.ingestSlate(ctx, pool, code, slate, cfg, &lr)

		if day < cfg.Days-1 {
			if err := sleepCtx(ctx, cfg.RequestDelay); err != nil {
				return lr, err
			}
		}
	}

	return lr, nil
}

func (s *IngestionService) ingestSlate(ctx context.Context, pool *ants.Pool, code string, slate []ExternalGame, cfg IngestionConfig, lr *LeagueReport) {
	var (
		wg       sync.WaitGroup
		ingested atomic.Int64
		skipped  atomic.Int64
		inserted atomic.Int64
		failed   atomic.Int64
	)

	lr.GamesSeen += len(slate)
	for i, ext := range slate {
		ext := ext
		if i > 0 {
			if err := sleepCtx(ctx, cfg.RequestDelay); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			gameCtx, cancel := context.WithTimeout(ctx, cfg.GameTimeout)
			defer cancel()

			logs, skippedGame, err := s.ingestGame(gameCtx, code, ext, cfg.DryRun)
			switch {
			case err != nil:
				failed.Add(1)
				s.logger.WarnContext(gameCtx, "game ingestion failed",
					"league", code,
					"game_ref", ext.ExternalRef,
					"error", err,
				)
			case skippedGame:
				skipped.Add(1)
			default:
				ingested.Add(1)
				inserted.Add(int64(logs))
			}
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			s.logger.WarnContext(ctx, "submit game to worker pool failed", "league", code, "error", submitErr)
		}
	}

	wg.Wait()
	lr.GamesIngested += int(ingested.Load())
	lr.GamesSkipped += int(skipped.Load())
	lr.LogsInserted += int(inserted.Load())
	lr.Failures += int(failed.Load())
}

// ingestGame processes a single scheduled game end to end: skip when already
// stored, otherwise fetch the boxscore, archive the raw body, resolve every
// entity, and insert observations. Returns the number of logs inserted and
// whether the game was skipped as already present.
func (s *IngestionService) ingestGame(ctx context.Context, code string, ext ExternalGame, dryRun bool) (int, bool, error) {
	if _, ok, err := s.gameRepo.GetByExternalRef(ctx, ext.ExternalRef); err != nil {
		return 0, false, fmt.Errorf("check game %s: %w", ext.ExternalRef, err)
	} else if ok {
		return 0, true, nil
	}

	raw, err := s.provider.FetchBoxScore(ctx, code, ext.ExternalRef)
	if err != nil {
		return 0, false, fmt.Errorf("fetch boxscore %s: %w", ext.ExternalRef, err)
	}

	if !dryRun && len(raw) > 0 {
		payload := rawdata.BuildPayload("statsfeed", "boxscore", ext.ExternalRef, code, ext.ExternalRef, raw)
		if perr := s.rawRepo.UpsertMany(ctx, []rawdata.Payload{payload}); perr != nil {
			s.logger.WarnContext(ctx, "archive boxscore payload failed", "game_ref", ext.ExternalRef, "error", perr)
		}
	}

	normalizer, ok := normalize.ForLeague(code)
	if !ok {
		return 0, false, fmt.Errorf("%w: no stat normalizer for league %s", ErrInvalidInput, code)
	}
	lines := normalizer(raw)
	if len(lines) == 0 {
		s.logger.InfoContext(ctx, "boxscore yielded no stat lines", "league", code, "game_ref", ext.ExternalRef)
	}

	homeID, err := s.resolver.ResolveOrCreateTeam(ctx, code, ext.HomeAbbr)
	if err != nil {
		return 0, false, fmt.Errorf("resolve home team %s: %w", ext.HomeAbbr, err)
	}
	awayID, err := s.resolver.ResolveOrCreateTeam(ctx, code, ext.AwayAbbr)
	if err != nil {
		return 0, false, fmt.Errorf("resolve away team %s: %w", ext.AwayAbbr, err)
	}

	if dryRun {
		return len(lines), false, nil
	}

	gameID, err := s.gameRepo.Create(ctx, game.Game{
		LeagueCode:  code,
		ExternalRef: ext.ExternalRef,
		HomeTeamID:  homeID,
		AwayTeamID:  awayID,
		GameDate:    ext.StartsAt,
		Season:      ext.Season,
	})
	if err != nil {
		return 0, false, fmt.Errorf("store game %s: %w", ext.ExternalRef, err)
	}

	logs := make([]gamelog.Log, 0, len(lines))
	for _, sl := range lines {
		teamID, opponentID, rerr := s.placeStatLine(ctx, code, sl.TeamAbbr, homeID, awayID, ext)
		if rerr != nil {
			s.logger.WarnContext(ctx, "stat line team did not resolve",
				"league", code,
				"game_ref", ext.ExternalRef,
				"team_abbr", sl.TeamAbbr,
				"error", rerr,
			)
			continue
		}

		playerID, perr := s.resolver.ResolveOrCreatePlayer(ctx, sl.PlayerExternalRef, sl.PlayerName, teamID)
		if perr != nil {
			s.logger.WarnContext(ctx, "stat line player did not resolve",
				"league", code,
				"game_ref", ext.ExternalRef,
				"player", sl.PlayerName,
				"error", perr,
			)
			continue
		}

		line := s.resolveLine(ctx, playerID, sl.PropType, sl.Line)
		logs = append(logs, gamelog.New(playerID, teamID, gameID, opponentID, sl.PropType, line, sl.Value, ext.StartsAt, ext.Season))
	}

	if len(logs) == 0 {
		return 0, false, nil
	}
	if err := s.logRepo.InsertMany(ctx, logs); err != nil {
		return 0, false, fmt.Errorf("insert game logs %s: %w", ext.ExternalRef, err)
	}

	return len(logs), false, nil
}

// placeStatLine maps a stat line's team abbreviation onto one side of the
// game. When the abbreviation matches neither scheduled side it is resolved
// as its own team and the home side stands in as the opponent.
func (s *IngestionService) placeStatLine(ctx context.Context, code, abbr string, homeID, awayID int64, ext ExternalGame) (int64, int64, error) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	switch abbr {
	case "", strings.ToUpper(ext.HomeAbbr):
		return homeID, awayID, nil
	case strings.ToUpper(ext.AwayAbbr):
		return awayID, homeID, nil
	}

	teamID, err := s.resolver.ResolveOrCreateTeam(ctx, code, abbr)
	if err != nil {
		return 0, 0, err
	}
	return teamID, homeID, nil
}

// resolveLine picks the threshold an observation is judged against: the
// provider's own line when present, else the latest primary book line, else
// the aggregator consensus, else a minimal over/under split.
func (s *IngestionService) resolveLine(ctx context.Context, playerID int64, propType string, providerLine *float64) float64 {
	if providerLine != nil {
		return *providerLine
	}
	if s.offerRepo == nil {
		return defaultLineFallback
	}

	for _, source := range []string{propoffer.SourcePrimary, propoffer.SourceAggregator} {
		offering, ok, err := s.offerRepo.GetLatest(ctx, playerID, propType, source)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "lookup prop line failed", "player_id", playerID, "prop_type", propType, "error", err)
			}
			return defaultLineFallback
		}
		if ok {
			return offering.Line
		}
	}

	return defaultLineFallback
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
