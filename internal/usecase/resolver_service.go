package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/prop-insights/internal/domain/player"
	"github.com/riskibarqy/prop-insights/internal/domain/team"
	"github.com/riskibarqy/prop-insights/internal/platform/cache"
	"github.com/riskibarqy/prop-insights/internal/platform/logging"
)

// ResolverService maps provider identifiers onto canonical team and player
// rows, creating rows on first sight. Its caches are scoped to one run and
// shared across that run's workers; a creation race is settled by re-querying
// after a unique-constraint hit, never by locking around the database.
type ResolverService struct {
	teamRepo   team.Repository
	playerRepo player.Repository
	logger     *logging.Logger

	teams   *cache.Store
	players *cache.Store
}

func NewResolverService(teamRepo team.Repository, playerRepo player.Repository, logger *logging.Logger) *ResolverService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ResolverService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		logger:     logger,
		teams:      cache.NewStore(0),
		players:    cache.NewStore(0),
	}
}

// ResolveTeam resolves a provider abbreviation to a canonical team id:
// alias map first, then direct lookup by (league, abbreviation) backfilling
// the alias row so the next sighting is a single lookup. ErrNotFound when
// neither path matches; the caller decides whether to create a placeholder.
func (s *ResolverService) ResolveTeam(ctx context.Context, leagueCode, providerAbbr string) (int64, error) {
	leagueCode = strings.ToLower(strings.TrimSpace(leagueCode))
	providerAbbr = strings.ToUpper(strings.TrimSpace(providerAbbr))
	if leagueCode == "" || providerAbbr == "" {
		return 0, fmt.Errorf("%w: league code and team abbreviation are required", ErrInvalidInput)
	}

	key := teamCacheKey(leagueCode, providerAbbr)
	value, err := s.teams.Fetch(ctx, key, func() (any, error) {
		return s.lookupTeam(ctx, leagueCode, providerAbbr)
	})
	if err != nil {
		return 0, err
	}

	return value.(int64), nil
}

func (s *ResolverService) lookupTeam(ctx context.Context, leagueCode, providerAbbr string) (int64, error) {
	teamID, ok, err := s.teamRepo.GetAlias(ctx, leagueCode, providerAbbr)
	if err != nil {
		return 0, fmt.Errorf("lookup team alias league=%s abbr=%s: %w", leagueCode, providerAbbr, err)
	}
	if ok {
		return teamID, nil
	}

	t, ok, err := s.teamRepo.GetByAbbreviation(ctx, leagueCode, providerAbbr)
	if err != nil {
		return 0, fmt.Errorf("lookup team league=%s abbr=%s: %w", leagueCode, providerAbbr, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: team league=%s abbr=%s", ErrNotFound, leagueCode, providerAbbr)
	}

	// Backfill the alias map so the next run resolves in one lookup.
	// A concurrent backfill of the same alias is an ignorable conflict.
	if err := s.teamRepo.CreateAlias(ctx, team.Alias{
		LeagueCode:   leagueCode,
		ProviderAbbr: providerAbbr,
		TeamID:       t.ID,
	}); err != nil && !errors.Is(err, team.ErrAlreadyExists) {
		s.logger.WarnContext(ctx, "backfill team alias failed", "league", leagueCode, "abbr", providerAbbr, "error", err)
	}

	return t.ID, nil
}

// ResolveOrCreateTeam resolves like ResolveTeam but creates a placeholder
// team named after the abbreviation when nothing matches.
func (s *ResolverService) ResolveOrCreateTeam(ctx context.Context, leagueCode, providerAbbr string) (int64, error) {
	teamID, err := s.ResolveTeam(ctx, leagueCode, providerAbbr)
	if err == nil {
		return teamID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	leagueCode = strings.ToLower(strings.TrimSpace(leagueCode))
	providerAbbr = strings.ToUpper(strings.TrimSpace(providerAbbr))

	newID, err := s.teamRepo.Create(ctx, team.Team{
		LeagueCode:   leagueCode,
		Abbreviation: providerAbbr,
		Name:         providerAbbr,
	})
	if errors.Is(err, team.ErrAlreadyExists) {
		existing, ok, lookupErr := s.teamRepo.GetByAbbreviation(ctx, leagueCode, providerAbbr)
		if lookupErr != nil {
			return 0, fmt.Errorf("re-query team after conflict league=%s abbr=%s: %w", leagueCode, providerAbbr, lookupErr)
		}
		if !ok {
			return 0, fmt.Errorf("team vanished after conflict league=%s abbr=%s", leagueCode, providerAbbr)
		}
		newID = existing.ID
	} else if err != nil {
		return 0, fmt.Errorf("create team league=%s abbr=%s: %w", leagueCode, providerAbbr, err)
	}

	if aliasErr := s.teamRepo.CreateAlias(ctx, team.Alias{
		LeagueCode:   leagueCode,
		ProviderAbbr: providerAbbr,
		TeamID:       newID,
	}); aliasErr != nil && !errors.Is(aliasErr, team.ErrAlreadyExists) {
		s.logger.WarnContext(ctx, "create team alias failed", "league", leagueCode, "abbr", providerAbbr, "error", aliasErr)
	}

	s.teams.Set(ctx, teamCacheKey(leagueCode, providerAbbr), newID)
	return newID, nil
}

// ResolveOrCreatePlayer resolves by external ref, then by exact name, then
// inserts a new player bound to the given team. A losing creation race
// re-queries and returns the row that won.
func (s *ResolverService) ResolveOrCreatePlayer(ctx context.Context, externalRef, name string, teamID int64) (int64, error) {
	externalRef = strings.TrimSpace(externalRef)
	name = strings.TrimSpace(name)
	if externalRef == "" && name == "" {
		return 0, fmt.Errorf("%w: player external ref or name is required", ErrInvalidInput)
	}

	key := playerCacheKey(externalRef, name)
	value, err := s.players.Fetch(ctx, key, func() (any, error) {
		return s.lookupOrCreatePlayer(ctx, externalRef, name, teamID)
	})
	if err != nil {
		return 0, err
	}

	return value.(int64), nil
}

func (s *ResolverService) lookupOrCreatePlayer(ctx context.Context, externalRef, name string, teamID int64) (int64, error) {
	if externalRef != "" {
		p, ok, err := s.playerRepo.GetByExternalRef(ctx, externalRef)
		if err != nil {
			return 0, fmt.Errorf("lookup player by external ref %s: %w", externalRef, err)
		}
		if ok {
			return p.ID, nil
		}
	}

	if name != "" {
		p, ok, err := s.playerRepo.GetByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("lookup player by name %s: %w", name, err)
		}
		if ok {
			return p.ID, nil
		}
	}

	displayName := name
	if displayName == "" {
		displayName = externalRef
	}

	newID, err := s.playerRepo.Create(ctx, player.Player{
		Name:        displayName,
		ExternalRef: externalRef,
		TeamID:      teamID,
	})
	if errors.Is(err, player.ErrAlreadyExists) {
		return s.requeryPlayer(ctx, externalRef, name)
	}
	if err != nil {
		return 0, fmt.Errorf("create player name=%s: %w", displayName, err)
	}

	return newID, nil
}

func (s *ResolverService) requeryPlayer(ctx context.Context, externalRef, name string) (int64, error) {
	if externalRef != "" {
		p, ok, err := s.playerRepo.GetByExternalRef(ctx, externalRef)
		if err != nil {
			return 0, fmt.Errorf("re-query player by external ref %s: %w", externalRef, err)
		}
		if ok {
			return p.ID, nil
		}
	}
	if name != "" {
		p, ok, err := s.playerRepo.GetByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("re-query player by name %s: %w", name, err)
		}
		if ok {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("player vanished after conflict ref=%s name=%s", externalRef, name)
}

func teamCacheKey(leagueCode, providerAbbr string) string {
	return leagueCode + "|" + providerAbbr
}

func playerCacheKey(externalRef, name string) string {
	if externalRef != "" {
		return "ref:" + externalRef
	}
	return "name:" + name
}
