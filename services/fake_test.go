package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/Dosada05/tichu-tournament/repositories"
	"github.com/google/uuid"
)

// ------------------------
// In-memory store
// ------------------------

// fakeStore backs every fake repository below. Each fake also exposes XxxFunc
// fields; when one is set it replaces the in-memory behavior of that method.
type fakeStore struct {
	mu           sync.Mutex
	tournaments  map[uuid.UUID]*models.Tournament
	teams        map[uuid.UUID]*models.Team
	rounds       map[uuid.UUID]*models.Round
	matches      map[uuid.UUID]*models.Match
	games        map[uuid.UUID]*models.Game
	participants map[uuid.UUID][]models.GameParticipant
	seq          int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments:  map[uuid.UUID]*models.Tournament{},
		teams:        map[uuid.UUID]*models.Team{},
		rounds:       map[uuid.UUID]*models.Round{},
		matches:      map[uuid.UUID]*models.Match{},
		games:        map[uuid.UUID]*models.Game{},
		participants: map[uuid.UUID][]models.GameParticipant{},
	}
}

// tick hands out increasing timestamps so ordering by created_at is stable.
func (s *fakeStore) tick() time.Time {
	s.seq++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

func (s *fakeStore) addTournament(status models.TournamentStatus, currentRound int) *models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Tournament{ID: uuid.New(), Name: "Club night", Status: status, CurrentRound: currentRound, CreatedAt: s.tick()}
	s.tournaments[t.ID] = t
	return t
}

func (s *fakeStore) addTeam(tournamentID uuid.UUID, name, token string) *models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Team{ID: uuid.New(), TournamentID: tournamentID, Name: name, AccessToken: token, CreatedAt: s.tick()}
	s.teams[t.ID] = t
	return t
}

func (s *fakeStore) addRound(tournamentID uuid.UUID, number int, status models.RoundStatus) *models.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.Round{ID: uuid.New(), TournamentID: tournamentID, RoundNumber: number, Status: status, CreatedAt: s.tick()}
	s.rounds[r.ID] = r
	return r
}

func (s *fakeStore) addMatch(round *models.Round, team1, team2 *models.Team, table int, status models.MatchStatus) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &models.Match{
		ID: uuid.New(), RoundID: round.ID, TournamentID: round.TournamentID,
		Team1ID: team1.ID, Team2ID: team2.ID, TableNumber: table, Status: status, CreatedAt: s.tick(),
	}
	s.matches[m.ID] = m
	return m
}

func (s *fakeStore) addGame(matchID uuid.UUID, number, team1Total, team2Total int) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &models.Game{
		ID: uuid.New(), MatchID: matchID, GameNumber: number,
		Team1Score: team1Total, Team2Score: team2Total,
		Team1TotalScore: team1Total, Team2TotalScore: team2Total, CreatedAt: s.tick(),
	}
	s.games[g.ID] = g
	return g
}

func (s *fakeStore) tournament(id uuid.UUID) models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tournaments[id]
}

func (s *fakeStore) team(id uuid.UUID) models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.teams[id]
}

func (s *fakeStore) match(id uuid.UUID) models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.matches[id]
}

func (s *fakeStore) roundsOf(tournamentID uuid.UUID) []models.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Round
	for _, r := range s.rounds {
		if r.TournamentID == tournamentID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out
}

func (s *fakeStore) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// ------------------------
// Fake Tournament Repo
// ------------------------

type FakeTournamentRepository struct {
	store *fakeStore

	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ActivateFunc           func(ctx context.Context, id uuid.UUID, totalRounds int) error
	UpdateCurrentRoundFunc func(ctx context.Context, id uuid.UUID, round int) error
}

var _ repositories.TournamentRepository = (*FakeTournamentRepository)(nil)

func (f *FakeTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *FakeTournamentRepository) Activate(ctx context.Context, id uuid.UUID, totalRounds int) error {
	if f.ActivateFunc != nil {
		return f.ActivateFunc(ctx, id, totalRounds)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.StatusActive
	t.TotalRounds = totalRounds
	if t.CurrentRound < 1 {
		t.CurrentRound = 1
	}
	return nil
}

func (f *FakeTournamentRepository) UpdateCurrentRound(ctx context.Context, id uuid.UUID, round int) error {
	if f.UpdateCurrentRoundFunc != nil {
		return f.UpdateCurrentRoundFunc(ctx, id, round)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if round > t.CurrentRound {
		t.CurrentRound = round
	}
	return nil
}

func (f *FakeTournamentRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.TournamentStatus) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

// ------------------------
// Fake Team Repo
// ------------------------

type FakeTeamRepository struct {
	store *fakeStore

	ListByTournamentFunc  func(ctx context.Context, tournamentID uuid.UUID) ([]models.Team, error)
	UpdateTotalPointsFunc func(ctx context.Context, id uuid.UUID, points int) error
}

var _ repositories.TeamRepository = (*FakeTeamRepository)(nil)

func (f *FakeTeamRepository) GetByAccessToken(_ context.Context, token string) (*models.Team, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, t := range f.store.teams {
		if t.AccessToken == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *FakeTeamRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Team, error) {
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, tournamentID)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := []models.Team{}
	for _, t := range f.store.teams {
		if t.TournamentID == tournamentID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeTeamRepository) UpdateTotalPoints(ctx context.Context, id uuid.UUID, points int) error {
	if f.UpdateTotalPointsFunc != nil {
		return f.UpdateTotalPointsFunc(ctx, id, points)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.TotalPoints = points
	return nil
}

// ------------------------
// Fake Round Repo
// ------------------------

type FakeRoundRepository struct {
	store *fakeStore

	CreateFunc func(ctx context.Context, round *models.Round) error
}

var _ repositories.RoundRepository = (*FakeRoundRepository)(nil)

func (f *FakeRoundRepository) Create(ctx context.Context, round *models.Round) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, round)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, r := range f.store.rounds {
		if r.TournamentID != round.TournamentID {
			continue
		}
		sameKey := r.IdempotencyKey != nil && round.IdempotencyKey != nil && *r.IdempotencyKey == *round.IdempotencyKey
		if r.RoundNumber == round.RoundNumber || sameKey {
			return repositories.ErrRoundConflict
		}
	}
	round.ID = uuid.New()
	round.CreatedAt = f.store.tick()
	cp := *round
	f.store.rounds[cp.ID] = &cp
	return nil
}

func (f *FakeRoundRepository) GetByNumber(_ context.Context, tournamentID uuid.UUID, number int) (*models.Round, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, r := range f.store.rounds {
		if r.TournamentID == tournamentID && r.RoundNumber == number {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (f *FakeRoundRepository) GetByIdempotencyKey(_ context.Context, tournamentID uuid.UUID, key string) (*models.Round, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, r := range f.store.rounds {
		if r.TournamentID == tournamentID && r.IdempotencyKey != nil && *r.IdempotencyKey == key {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (f *FakeRoundRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.RoundStatus) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	r, ok := f.store.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	r.Status = status
	return nil
}

// ------------------------
// Fake Match Repo
// ------------------------

type FakeMatchRepository struct {
	store *fakeStore

	CreateFunc             func(ctx context.Context, m *models.Match) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.Match, error)
	UpdateConfirmationFunc func(ctx context.Context, id uuid.UUID, side models.TeamSide, confirmed bool, status models.MatchStatus, completedAt *time.Time) error
}

var _ repositories.MatchRepository = (*FakeMatchRepository)(nil)

func (f *FakeMatchRepository) Create(ctx context.Context, m *models.Match) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, m)
	}
	return f.create(m)
}

// create is the in-memory Create, for CreateFunc overrides that fail only some calls.
func (f *FakeMatchRepository) create(m *models.Match) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = f.store.tick()
	cp := *m
	f.store.matches[cp.ID] = &cp
	return nil
}

func (f *FakeMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	m, ok := f.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *FakeMatchRepository) ListByRound(_ context.Context, roundID uuid.UUID) ([]models.Match, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := []models.Match{}
	for _, m := range f.store.matches {
		if m.RoundID == roundID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out, nil
}

func (f *FakeMatchRepository) ListByTournament(_ context.Context, tournamentID uuid.UUID, status *models.MatchStatus) ([]models.Match, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := []models.Match{}
	for _, m := range f.store.matches {
		if m.TournamentID != tournamentID || (status != nil && m.Status != *status) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeMatchRepository) UpdateConfirmation(ctx context.Context, id uuid.UUID, side models.TeamSide, confirmed bool, status models.MatchStatus, completedAt *time.Time) error {
	if f.UpdateConfirmationFunc != nil {
		return f.UpdateConfirmationFunc(ctx, id, side, confirmed, status, completedAt)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	m, ok := f.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if side == models.Side1 {
		m.Team1Confirmed = confirmed
	} else {
		m.Team2Confirmed = confirmed
	}
	m.Status = status
	m.CompletedAt = completedAt
	return nil
}

func (f *FakeMatchRepository) MarkPlaying(_ context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if m, ok := f.store.matches[id]; ok && m.Status == models.MatchStatusPending {
		m.Status = models.MatchStatusPlaying
	}
	return nil
}

// ------------------------
// Fake Game Repo
// ------------------------

type FakeGameRepository struct {
	store *fakeStore

	UpsertFunc func(ctx context.Context, g *models.Game) error
}

var _ repositories.GameRepository = (*FakeGameRepository)(nil)

func (f *FakeGameRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Game, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	g, ok := f.store.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *FakeGameRepository) GetByMatchAndNumber(_ context.Context, matchID uuid.UUID, gameNumber int) (*models.Game, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, g := range f.store.games {
		if g.MatchID == matchID && g.GameNumber == gameNumber {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repositories.ErrGameNotFound
}

func (f *FakeGameRepository) CountByMatch(_ context.Context, matchID uuid.UUID) (int, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	n := 0
	for _, g := range f.store.games {
		if g.MatchID == matchID {
			n++
		}
	}
	return n, nil
}

func (f *FakeGameRepository) ListByMatchIDs(_ context.Context, matchIDs []uuid.UUID) ([]models.Game, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(matchIDs))
	for _, id := range matchIDs {
		wanted[id] = true
	}
	out := []models.Game{}
	for _, g := range f.store.games {
		if wanted[g.MatchID] {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *FakeGameRepository) Upsert(ctx context.Context, g *models.Game) error {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, g)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for id, existing := range f.store.games {
		if existing.MatchID == g.MatchID && existing.GameNumber == g.GameNumber {
			g.ID, g.CreatedAt = id, existing.CreatedAt
			cp := *g
			f.store.games[id] = &cp
			return nil
		}
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = f.store.tick()
	cp := *g
	f.store.games[cp.ID] = &cp
	return nil
}

func (f *FakeGameRepository) ReplaceParticipants(_ context.Context, gameID uuid.UUID, ps []models.GameParticipant) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.participants[gameID] = append([]models.GameParticipant(nil), ps...)
	return nil
}

// ------------------------
// Fake archiver and recorder
// ------------------------

type FakeArchiver struct {
	ArchiveFunc func(ctx context.Context, t *models.Tournament, standings []models.TournamentStanding) (string, error)
}

var _ StandingsArchiver = (*FakeArchiver)(nil)

func (f *FakeArchiver) Archive(ctx context.Context, t *models.Tournament, standings []models.TournamentStanding) (string, error) {
	return f.ArchiveFunc(ctx, t, standings)
}

type FakeRecorder struct {
	mu     sync.Mutex
	events []string
}

var _ Recorder = (*FakeRecorder)(nil)

func (f *FakeRecorder) add(e string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *FakeRecorder) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *FakeRecorder) RoundStarted(pairing string, _ int) { f.add("round:" + pairing) }
func (f *FakeRecorder) ScoreSubmitted(outcome string)      { f.add("score:" + outcome) }
func (f *FakeRecorder) MatchConfirmation(action string)    { f.add("confirmation:" + action) }
func (f *FakeRecorder) TournamentFinished()                { f.add("finished") }

// fakeRepos bundles one fake of each repository over a shared store.
type fakeRepos struct {
	store       *fakeStore
	tournaments *FakeTournamentRepository
	teams       *FakeTeamRepository
	rounds      *FakeRoundRepository
	matches     *FakeMatchRepository
	games       *FakeGameRepository
	recorder    *FakeRecorder
}

func newFakeRepos() *fakeRepos {
	s := newFakeStore()
	return &fakeRepos{
		store:       s,
		tournaments: &FakeTournamentRepository{store: s},
		teams:       &FakeTeamRepository{store: s},
		rounds:      &FakeRoundRepository{store: s},
		matches:     &FakeMatchRepository{store: s},
		games:       &FakeGameRepository{store: s},
		recorder:    &FakeRecorder{},
	}
}
