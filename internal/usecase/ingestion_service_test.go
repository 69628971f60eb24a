package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/prop-insights/internal/domain/game"
	"github.com/riskibarqy/prop-insights/internal/domain/gamelog"
	"github.com/riskibarqy/prop-insights/internal/domain/league"
	"github.com/riskibarqy/prop-insights/internal/domain/propoffer"
	"github.com/riskibarqy/prop-insights/internal/domain/rawdata"
)

type stubProvider struct {
	mu            sync.Mutex
	scheduleFn    func(leagueCode string, date time.Time) ([]ExternalGame, []byte, error)
	boxScoreFn    func(leagueCode, gameRef string) ([]byte, error)
	scheduleCalls int
	boxScoreCalls int
}

func (p *stubProvider) FetchSchedule(_ context.Context, leagueCode string, date time.Time) ([]ExternalGame, []byte, error) {
	p.mu.Lock()
	p.scheduleCalls++
	p.mu.Unlock()
	return p.scheduleFn(leagueCode, date)
}

func (p *stubProvider) FetchBoxScore(_ context.Context, leagueCode, gameRef string) ([]byte, error) {
	p.mu.Lock()
	p.boxScoreCalls++
	p.mu.Unlock()
	if p.boxScoreFn == nil {
		return nil, errors.New("no boxscore configured")
	}
	return p.boxScoreFn(leagueCode, gameRef)
}

type stubLeagueRepo struct {
	mu      sync.Mutex
	leagues map[string]league.League
}

func newStubLeagueRepo(leagues ...league.League) *stubLeagueRepo {
	r := &stubLeagueRepo{leagues: make(map[string]league.League)}
	for _, l := range leagues {
		r.leagues[l.Code] = l
	}
	return r
}

func (r *stubLeagueRepo) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leagues[code]
	return l, ok, nil
}

func (r *stubLeagueRepo) List(_ context.Context) ([]league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]league.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	return out, nil
}

func (r *stubLeagueRepo) Ensure(_ context.Context, l league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leagues[l.Code] = l
	return nil
}

type stubGameRepo struct {
	mu     sync.Mutex
	nextID int64
	byRef  map[string]game.Game
}

func newStubGameRepo() *stubGameRepo {
	return &stubGameRepo{byRef: make(map[string]game.Game)}
}

func (r *stubGameRepo) GetByExternalRef(_ context.Context, ref string) (game.Game, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byRef[ref]
	return g, ok, nil
}

func (r *stubGameRepo) Create(_ context.Context, g game.Game) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byRef[g.ExternalRef]; ok {
		return existing.ID, nil
	}
	r.nextID++
	g.ID = r.nextID
	r.byRef[g.ExternalRef] = g
	return g.ID, nil
}

type stubLogRepo struct {
	mu        sync.Mutex
	logs      []gamelog.Log
	combos    []gamelog.Combo
	recent    map[string][]gamelog.Log
	recentErr map[string]error
	combosErr map[int]error
	totals    []gamelog.OpponentTotal
}

func newStubLogRepo() *stubLogRepo {
	return &stubLogRepo{
		recent:    make(map[string][]gamelog.Log),
		recentErr: make(map[string]error),
		combosErr: make(map[int]error),
	}
}

func comboKey(playerID int64, propType, season string) string {
	return fmt.Sprintf("%d|%s|%s", playerID, propType, season)
}

func (r *stubLogRepo) InsertMany(_ context.Context, logs []gamelog.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, logs...)
	return nil
}

func (r *stubLogRepo) ListRecent(_ context.Context, playerID int64, propType, season string, limit int) ([]gamelog.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := comboKey(playerID, propType, season)
	if err := r.recentErr[key]; err != nil {
		return nil, err
	}
	logs := r.recent[key]
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (r *stubLogRepo) ListCombos(_ context.Context, limit, offset int) ([]gamelog.Combo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.combosErr[offset]; err != nil {
		return nil, err
	}
	if offset >= len(r.combos) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.combos) {
		end = len(r.combos)
	}
	return r.combos[offset:end], nil
}

func (r *stubLogRepo) ListOpponentTotals(_ context.Context, _ string) ([]gamelog.OpponentTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals, nil
}

type stubOfferRepo struct {
	mu     sync.Mutex
	latest map[string]propoffer.Offering
	getErr error
}

func newStubOfferRepo() *stubOfferRepo {
	return &stubOfferRepo{latest: make(map[string]propoffer.Offering)}
}

func offerKey(playerID int64, propType, source string) string {
	return fmt.Sprintf("%d|%s|%s", playerID, propType, source)
}

func (r *stubOfferRepo) UpsertMany(_ context.Context, offerings []propoffer.Offering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range offerings {
		r.latest[offerKey(o.PlayerID, o.PropType, o.Source)] = o
	}
	return nil
}

func (r *stubOfferRepo) GetLatest(_ context.Context, playerID int64, propType, source string) (propoffer.Offering, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return propoffer.Offering{}, false, r.getErr
	}
	o, ok := r.latest[offerKey(playerID, propType, source)]
	return o, ok, nil
}

type stubRawRepo struct {
	mu       sync.Mutex
	payloads []rawdata.Payload
}

func (r *stubRawRepo) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, items...)
	return nil
}

type ingestFixture struct {
	provider   *stubProvider
	leagueRepo *stubLeagueRepo
	gameRepo   *stubGameRepo
	logRepo    *stubLogRepo
	offerRepo  *stubOfferRepo
	rawRepo    *stubRawRepo
	teamRepo   *stubTeamRepo
	playerRepo *stubPlayerRepo
	svc        *IngestionService
}

func newIngestFixture(provider *stubProvider) *ingestFixture {
	f := &ingestFixture{
		provider: provider,
		leagueRepo: newStubLeagueRepo(
			league.League{Code: "nba", Name: "National Basketball Association", Sport: "basketball"},
			league.League{Code: "nhl", Name: "National Hockey League", Sport: "hockey"},
		),
		gameRepo:   newStubGameRepo(),
		logRepo:    newStubLogRepo(),
		offerRepo:  newStubOfferRepo(),
		rawRepo:    &stubRawRepo{},
		teamRepo:   newStubTeamRepo(),
		playerRepo: newStubPlayerRepo(),
	}

	resolver := NewResolverService(f.teamRepo, f.playerRepo, nil)
	f.svc = NewIngestionService(provider, nil, resolver, f.leagueRepo, f.gameRepo, f.logRepo, f.offerRepo, f.rawRepo, nil)
	return f
}

func testIngestionConfig(leagues ...string) IngestionConfig {
	return IngestionConfig{
		Leagues:      leagues,
		StartDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Days:         1,
		Workers:      2,
		RequestDelay: time.Millisecond,
		GameTimeout:  time.Second,
	}
}

const boxscoreJSON = `{
	"players": [
		{"id": "p1", "name": "A. Guard", "team": "BOS", "stats": {"pts": 31, "ast": 8}},
		{"id": "p2", "name": "B. Forward", "team": "NYK", "stats": {"pts": 22, "reb": 11}}
	]
}`

func TestIngestionService_Run_IngestsSlate(t *testing.T) {
	t.Parallel()

	tipoff := time.Date(2026, 1, 15, 19, 30, 0, 0, time.UTC)
	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			slate := []ExternalGame{{
				ExternalRef: "g-100",
				HomeAbbr:    "BOS",
				AwayAbbr:    "NYK",
				Season:      "2026",
				StartsAt:    tipoff,
			}}
			return slate, []byte(`{"events":[]}`), nil
		},
		boxScoreFn: func(string, string) ([]byte, error) {
			return []byte(boxscoreJSON), nil
		},
	}
	f := newIngestFixture(provider)

	report, err := f.svc.Run(context.Background(), testIngestionConfig("nba"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Leagues) != 1 {
		t.Fatalf("expected one league report, got %d", len(report.Leagues))
	}

	lr := report.Leagues[0]
	if lr.GamesIngested != 1 || lr.GamesSkipped != 0 || lr.Failures != 0 {
		t.Fatalf("unexpected report: %+v", lr)
	}
	if lr.LogsInserted != 4 {
		t.Fatalf("expected 4 log rows, got %d", lr.LogsInserted)
	}

	g, ok := f.gameRepo.byRef["g-100"]
	if !ok {
		t.Fatal("expected game stored")
	}
	if g.HomeTeamID == 0 || g.AwayTeamID == 0 || g.HomeTeamID == g.AwayTeamID {
		t.Fatalf("unexpected game teams: %+v", g)
	}

	// No market line is configured, so observations are judged against the
	// minimal split and every positive value counts as a hit.
	if len(f.logRepo.logs) != 4 {
		t.Fatalf("expected 4 logs, got %d", len(f.logRepo.logs))
	}
	for _, l := range f.logRepo.logs {
		if l.Line != 0.5 {
			t.Fatalf("expected fallback line 0.5, got %v", l.Line)
		}
		if !l.Hit {
			t.Fatalf("expected hit for value %v over line %v", l.ActualValue, l.Line)
		}
		if l.GameID != g.ID {
			t.Fatalf("log bound to wrong game: %+v", l)
		}
	}

	// Schedule and boxscore bodies are both archived.
	if len(f.rawRepo.payloads) != 2 {
		t.Fatalf("expected 2 archived payloads, got %d", len(f.rawRepo.payloads))
	}
}

func TestIngestionService_Run_UsesMarketLineWhenAvailable(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			return []ExternalGame{{
				ExternalRef: "g-200",
				HomeAbbr:    "BOS",
				AwayAbbr:    "NYK",
				Season:      "2026",
				StartsAt:    time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC),
			}}, nil, nil
		},
		boxScoreFn: func(string, string) ([]byte, error) {
			return []byte(`{"players":[{"id":"p1","name":"A. Guard","team":"BOS","stats":{"pts":31}}]}`), nil
		},
	}
	f := newIngestFixture(provider)

	// The player does not exist yet and gets id 1 on first sight.
	f.offerRepo.latest[offerKey(1, "points", propoffer.SourcePrimary)] = propoffer.Offering{
		PlayerID: 1,
		PropType: "points",
		Line:     33.5,
		Source:   propoffer.SourcePrimary,
	}

	if _, err := f.svc.Run(context.Background(), testIngestionConfig("nba")); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(f.logRepo.logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(f.logRepo.logs))
	}
	l := f.logRepo.logs[0]
	if l.Line != 33.5 {
		t.Fatalf("expected market line 33.5, got %v", l.Line)
	}
	if l.Hit {
		t.Fatal("31 under a 33.5 line must not count as a hit")
	}
}

func TestIngestionService_Run_SkipsAlreadyStoredGames(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			return []ExternalGame{{
				ExternalRef: "g-300",
				HomeAbbr:    "BOS",
				AwayAbbr:    "NYK",
				Season:      "2026",
				StartsAt:    time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC),
			}}, nil, nil
		},
	}
	f := newIngestFixture(provider)
	f.gameRepo.byRef["g-300"] = game.Game{ID: 5, ExternalRef: "g-300"}

	report, err := f.svc.Run(context.Background(), testIngestionConfig("nba"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lr := report.Leagues[0]
	if lr.GamesSkipped != 1 || lr.GamesIngested != 0 {
		t.Fatalf("unexpected report: %+v", lr)
	}
	if provider.boxScoreCalls != 0 {
		t.Fatalf("expected no boxscore fetch for stored game, got %d", provider.boxScoreCalls)
	}
}

func TestIngestionService_Run_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			return []ExternalGame{{
				ExternalRef: "g-400",
				HomeAbbr:    "BOS",
				AwayAbbr:    "NYK",
				Season:      "2026",
				StartsAt:    time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC),
			}}, []byte(`{"events":[]}`), nil
		},
		boxScoreFn: func(string, string) ([]byte, error) {
			return []byte(boxscoreJSON), nil
		},
	}
	f := newIngestFixture(provider)

	cfg := testIngestionConfig("nba")
	cfg.DryRun = true

	report, err := f.svc.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Leagues[0].GamesIngested != 1 {
		t.Fatalf("dry run still walks the slate: %+v", report.Leagues[0])
	}
	if len(f.gameRepo.byRef) != 0 {
		t.Fatal("dry run must not store games")
	}
	if len(f.logRepo.logs) != 0 {
		t.Fatal("dry run must not store logs")
	}
	if len(f.rawRepo.payloads) != 0 {
		t.Fatal("dry run must not archive payloads")
	}
}

func TestIngestionService_Run_AbandonsLeagueAfterRepeatedScheduleFailures(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		scheduleFn: func(leagueCode string, _ time.Time) ([]ExternalGame, []byte, error) {
			if leagueCode == "nba" {
				return nil, nil, errors.New("upstream 503")
			}
			return nil, nil, nil
		},
	}
	f := newIngestFixture(provider)

	cfg := testIngestionConfig("nba", "nhl")
	cfg.Days = 8
	cfg.FailureThreshold = 3

	report, err := f.svc.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("an abandoned league must not fail the run: %v", err)
	}
	if len(report.Leagues) != 2 {
		t.Fatalf("expected both league reports, got %d", len(report.Leagues))
	}

	nba := report.Leagues[0]
	if !nba.Aborted {
		t.Fatal("expected nba abandoned")
	}
	if nba.Failures != 3 {
		t.Fatalf("expected 3 schedule failures before abort, got %d", nba.Failures)
	}

	nhl := report.Leagues[1]
	if nhl.Aborted {
		t.Fatal("nhl must be unaffected by the nba abort")
	}
	if nhl.DatesFetched != 8 {
		t.Fatalf("expected nhl to walk all 8 dates, got %d", nhl.DatesFetched)
	}
}

func TestIngestionService_Run_PermanentScheduleFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	notFound := errors.New("slate not published")
	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			return nil, nil, notFound
		},
	}
	f := newIngestFixture(provider)
	f.svc.isTransient = func(err error) bool { return !errors.Is(err, notFound) }

	cfg := testIngestionConfig("nba")
	cfg.Days = 8
	cfg.FailureThreshold = 3

	report, err := f.svc.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("permanent failures must not fail the run: %v", err)
	}

	nba := report.Leagues[0]
	if nba.Aborted {
		t.Fatal("permanent schedule failures must not trip the abort threshold")
	}
	if nba.Failures != 8 {
		t.Fatalf("expected every date counted as a failure, got %d", nba.Failures)
	}
	if provider.scheduleCalls != 8 {
		t.Fatalf("expected all 8 dates attempted, got %d", provider.scheduleCalls)
	}
}

func TestIngestionService_Run_RecoveredScheduleResetsFailureStreak(t *testing.T) {
	t.Parallel()

	calls := 0
	var mu sync.Mutex
	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			// Every other fetch fails; the streak never reaches the threshold.
			if calls%2 == 1 {
				return nil, nil, errors.New("flaky upstream")
			}
			return nil, nil, nil
		},
	}
	f := newIngestFixture(provider)

	cfg := testIngestionConfig("nba")
	cfg.Days = 6
	cfg.FailureThreshold = 2

	report, err := f.svc.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lr := report.Leagues[0]
	if lr.Aborted {
		t.Fatal("alternating failures must not abort the league")
	}
	if lr.DatesFetched != 3 || lr.Failures != 3 {
		t.Fatalf("unexpected report: %+v", lr)
	}
}

func TestIngestionService_Run_UnknownLeagueFails(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		scheduleFn: func(string, time.Time) ([]ExternalGame, []byte, error) {
			return nil, nil, nil
		},
	}
	f := newIngestFixture(provider)

	_, err := f.svc.Run(context.Background(), testIngestionConfig("xfl"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unconfigured league, got %v", err)
	}
}

func TestIngestionConfig_Normalize(t *testing.T) {
	t.Parallel()

	cfg := IngestionConfig{Leagues: []string{" NBA "}}
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Leagues[0] != "nba" {
		t.Fatalf("expected lowercased league code, got %q", cfg.Leagues[0])
	}
	if cfg.Direction != "backward" || cfg.Workers != defaultIngestWorkers || cfg.Days != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	bad := IngestionConfig{Leagues: []string{"nba"}, Direction: "sideways"}
	if err := bad.normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for direction, got %v", err)
	}

	if err := (&IngestionConfig{}).normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected ErrInvalidInput for empty leagues")
	}
}
