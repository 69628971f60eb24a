package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/prop-insights/internal/domain/analytics"
	"github.com/riskibarqy/prop-insights/internal/domain/gamelog"
	"github.com/riskibarqy/prop-insights/internal/domain/league"
	"github.com/riskibarqy/prop-insights/internal/domain/matchup"
	"github.com/riskibarqy/prop-insights/internal/domain/propoffer"
	"github.com/riskibarqy/prop-insights/internal/domain/team"
	"github.com/riskibarqy/prop-insights/internal/platform/logging"
	"github.com/riskibarqy/prop-insights/internal/platform/oddsmath"
)

const (
	defaultEnrichPageSize = 200
	defaultEnrichWorkers  = 8
	defaultPageDelay      = 100 * time.Millisecond
	recentWindow          = 20
	fallbackAmericanOdds  = -110
)

// EnrichmentConfig controls one enrichment pass.
type EnrichmentConfig struct {
	PageSize  int
	PageDelay time.Duration
	Workers   int
}

func (c *EnrichmentConfig) normalize() {
	if c.PageSize < 1 {
		c.PageSize = defaultEnrichPageSize
	}
	if c.PageDelay <= 0 {
		c.PageDelay = defaultPageDelay
	}
	if c.Workers < 1 {
		c.Workers = defaultEnrichWorkers
	}
}

// EnrichReport summarizes one enrichment pass.
type EnrichReport struct {
	CombosProcessed int
	CombosSkipped   int
	CombosFailed    int
	Started         time.Time
	Ended           time.Time
}

// EnrichmentService recomputes analytics per (player, prop_type, season)
// combo: rolling hit rates, streak, head-to-head and season averages, the
// opponent's matchup rank, and an expected-value estimate against the latest
// market quote. Combos are paged from the log store and fanned out on a
// bounded pool; a combo whose base window cannot be read is skipped, while
// optional lookups degrade to nil and are merged with stored values.
type EnrichmentService struct {
	logRepo       gamelog.Repository
	analyticsRepo analytics.Repository
	matchupRepo   matchup.Repository
	offerRepo     propoffer.Repository
	teamRepo      team.Repository
	leagueRepo    league.Repository
	logger        *logging.Logger
}

func NewEnrichmentService(
	logRepo gamelog.Repository,
	analyticsRepo analytics.Repository,
	matchupRepo matchup.Repository,
	offerRepo propoffer.Repository,
	teamRepo team.Repository,
	leagueRepo league.Repository,
	logger *logging.Logger,
) *EnrichmentService {
	if logger == nil {
		logger = logging.Default()
	}

	return &EnrichmentService{
		logRepo:       logRepo,
		analyticsRepo: analyticsRepo,
		matchupRepo:   matchupRepo,
		offerRepo:     offerRepo,
		teamRepo:      teamRepo,
		leagueRepo:    leagueRepo,
		logger:        logger,
	}
}

// Run pages through every known combo and recomputes its analytics row.
func (s *EnrichmentService) Run(ctx context.Context, cfg EnrichmentConfig) (EnrichReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.Run")
	defer span.End()

	cfg.normalize()
	report := EnrichReport{Started: time.Now().UTC()}

	var processed, skipped, failed atomic.Int64

	// The report must reflect partial progress on every exit path, matching
	// the ingestion run contract.
	finish := func() EnrichReport {
		report.CombosProcessed = int(processed.Load())
		report.CombosSkipped = int(skipped.Load())
		report.CombosFailed = int(failed.Load())
		report.Ended = time.Now().UTC()
		return report
	}

	for offset := 0; ; offset += cfg.PageSize {
		if ctx.Err() != nil {
			return finish(), ctx.Err()
		}

		combos, err := s.logRepo.ListCombos(ctx, cfg.PageSize, offset)
		if err != nil {
			return finish(), fmt.Errorf("list combos offset=%d: %w", offset, err)
		}
		if len(combos) == 0 {
			break
		}

		workers := pool.New().WithMaxGoroutines(cfg.Workers)
		for _, combo := range combos {
			combo := combo
			workers.Go(func() {
				switch s.enrichCombo(ctx, combo) {
				case enrichOutcomeProcessed:
					processed.Add(1)
				case enrichOutcomeSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
			})
		}
		workers.Wait()

		if len(combos) < cfg.PageSize {
			break
		}
		if err := sleepCtx(ctx, cfg.PageDelay); err != nil {
			return finish(), err
		}
	}

	return finish(), nil
}

type enrichOutcome int

const (
	enrichOutcomeProcessed enrichOutcome = iota
	enrichOutcomeSkipped
	enrichOutcomeFailed
)

func (s *EnrichmentService) enrichCombo(ctx context.Context, combo gamelog.Combo) enrichOutcome {
	logs, err := s.logRepo.ListRecent(ctx, combo.PlayerID, combo.PropType, combo.Season, recentWindow)
	if err != nil {
		s.logger.WarnContext(ctx, "load recent logs failed",
			"player_id", combo.PlayerID,
			"prop_type", combo.PropType,
			"season", combo.Season,
			"error", err,
		)
		return enrichOutcomeFailed
	}
	if len(logs) == 0 {
		return enrichOutcomeSkipped
	}

	row := analytics.PlayerProp{
		PlayerID:      combo.PlayerID,
		PropType:      combo.PropType,
		Season:        combo.Season,
		HitRateL5:     hitRate(logs, 5),
		HitRateL10:    hitRate(logs, 10),
		HitRateL20:    hitRate(logs, 20),
		CurrentStreak: currentStreak(logs),
		H2HAvg:        headToHeadAvg(logs),
		SeasonAvg:     seasonAvg(logs),
		UpdatedAt:     time.Now().UTC(),
	}

	row.MatchupRank = s.lookupMatchupRank(ctx, logs[0].OpponentTeamID, combo)
	row.Sport = s.lookupSport(ctx, logs[0].TeamID)
	row.EVPercent = s.computeEV(ctx, combo, row, logs)

	if err := s.analyticsRepo.Upsert(ctx, row); err != nil {
		s.logger.WarnContext(ctx, "upsert analytics failed",
			"player_id", combo.PlayerID,
			"prop_type", combo.PropType,
			"error", err,
		)
		return enrichOutcomeFailed
	}

	return enrichOutcomeProcessed
}

// hitRate is the percentage of hits in the newest window observations,
// against however many the player actually has when fewer exist.
func hitRate(logs []gamelog.Log, window int) float64 {
	n := window
	if len(logs) < n {
		n = len(logs)
	}
	if n == 0 {
		return 0
	}

	hits := 0
	for _, l := range logs[:n] {
		if l.Hit {
			hits++
		}
	}
	return 100.0 * float64(hits) / float64(n)
}

// currentStreak counts consecutive same-outcome games from the newest log,
// positive for hits and negative for misses.
func currentStreak(logs []gamelog.Log) int {
	if len(logs) == 0 {
		return 0
	}

	streak := 0
	lead := logs[0].Hit
	for _, l := range logs {
		if l.Hit != lead {
			break
		}
		streak++
	}
	if !lead {
		streak = -streak
	}
	return streak
}

// headToHeadAvg averages the actual values posted against the most recent
// opponent. Nil when the opponent is unknown.
func headToHeadAvg(logs []gamelog.Log) *float64 {
	opponent := logs[0].OpponentTeamID
	if opponent <= 0 {
		return nil
	}

	sum := 0.0
	n := 0
	for _, l := range logs {
		if l.OpponentTeamID == opponent {
			sum += l.ActualValue
			n++
		}
	}
	if n == 0 {
		return nil
	}

	avg := sum / float64(n)
	return &avg
}

func seasonAvg(logs []gamelog.Log) *float64 {
	sum := 0.0
	for _, l := range logs {
		sum += l.ActualValue
	}
	avg := sum / float64(len(logs))
	return &avg
}

// lookupMatchupRank is a soft lookup: any failure or absence yields nil,
// and the upsert's COALESCE keeps whatever rank is already stored.
func (s *EnrichmentService) lookupMatchupRank(ctx context.Context, opponentTeamID int64, combo gamelog.Combo) *float64 {
	if opponentTeamID <= 0 || s.matchupRepo == nil {
		return nil
	}

	rank, ok, err := s.matchupRepo.GetLatest(ctx, opponentTeamID, combo.PropType, combo.Season)
	if err != nil {
		s.logger.WarnContext(ctx, "lookup matchup rank failed",
			"team_id", opponentTeamID,
			"prop_type", combo.PropType,
			"error", err,
		)
		return nil
	}
	if !ok {
		return nil
	}

	return &rank.RankPct
}

func (s *EnrichmentService) lookupSport(ctx context.Context, teamID int64) *string {
	if teamID <= 0 || s.teamRepo == nil || s.leagueRepo == nil {
		return nil
	}

	t, ok, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil || !ok {
		return nil
	}
	l, ok, err := s.leagueRepo.GetByCode(ctx, t.LeagueCode)
	if err != nil || !ok || l.Sport == "" {
		return nil
	}

	return &l.Sport
}

// computeEV compares the hit-rate baseline against the implied probability of
// the best available quote. Missing quotes fall back source by source down to
// a standard -110 price per missing side, so the result is always numeric
// once any logs exist.
func (s *EnrichmentService) computeEV(ctx context.Context, combo gamelog.Combo, row analytics.PlayerProp, logs []gamelog.Log) *float64 {
	line := logs[0].Line
	overOdds := float64(fallbackAmericanOdds)
	underOdds := float64(fallbackAmericanOdds)

	if s.offerRepo != nil {
		for _, source := range []string{propoffer.SourcePrimary, propoffer.SourceAggregator} {
			offering, ok, err := s.offerRepo.GetLatest(ctx, combo.PlayerID, combo.PropType, source)
			if err != nil {
				s.logger.WarnContext(ctx, "lookup prop offering failed",
					"player_id", combo.PlayerID,
					"prop_type", combo.PropType,
					"source", source,
					"error", err,
				)
				break
			}
			if !ok {
				continue
			}

			line = offering.Line
			if offering.OverOdds != nil {
				overOdds = *offering.OverOdds
			}
			if offering.UnderOdds != nil {
				underOdds = *offering.UnderOdds
			}
			break
		}
	}

	odds := underOdds
	if row.SeasonAvg != nil && *row.SeasonAvg > line {
		odds = overOdds
	}

	baseline := baselineHitRate(row, len(logs)) / 100.0
	ev := (baseline - oddsmath.ImpliedProbability(odds)) * 100.0
	return &ev
}

// baselineHitRate prefers the 10-game window, widening to 20 and narrowing
// to 5 when fewer observations back the preferred window.
func baselineHitRate(row analytics.PlayerProp, observed int) float64 {
	switch {
	case observed >= 10:
		return row.HitRateL10
	case observed >= 5:
		return row.HitRateL20
	case observed >= 1:
		return row.HitRateL5
	default:
		return 0
	}
}

// RecomputeMatchupRanks rebuilds the per-team generosity percentiles for one
// season from opposing accumulation. Within each prop type, teams are ranked
// by the average value opposing players post against them; the most generous
// team gets 100.
func (s *EnrichmentService) RecomputeMatchupRanks(ctx context.Context, season string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.RecomputeMatchupRanks")
	defer span.End()

	if season == "" {
		return 0, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	totals, err := s.logRepo.ListOpponentTotals(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("list opponent totals season=%s: %w", season, err)
	}
	if len(totals) == 0 {
		return 0, nil
	}

	byProp := make(map[string][]gamelog.OpponentTotal)
	for _, t := range totals {
		byProp[t.PropType] = append(byProp[t.PropType], t)
	}

	now := time.Now().UTC()
	ranks := make([]matchup.Rank, 0, len(totals))
	for propType, group := range byProp {
		sort.Slice(group, func(i, j int) bool {
			if group[i].AvgValue != group[j].AvgValue {
				return group[i].AvgValue < group[j].AvgValue
			}
			return group[i].TeamID < group[j].TeamID
		})

		for i, t := range group {
			pct := 50.0
			if len(group) > 1 {
				pct = 100.0 * float64(i) / float64(len(group)-1)
			}
			ranks = append(ranks, matchup.Rank{
				TeamID:    t.TeamID,
				PropType:  propType,
				Season:    season,
				RankPct:   pct,
				UpdatedAt: now,
			})
		}
	}

	if err := s.matchupRepo.UpsertMany(ctx, ranks); err != nil {
		return 0, fmt.Errorf("upsert matchup ranks season=%s: %w", season, err)
	}

	return len(ranks), nil
}
