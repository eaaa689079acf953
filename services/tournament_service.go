package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/tichu-tournament/brackets"
	"github.com/Dosada05/tichu-tournament/models"
	"github.com/Dosada05/tichu-tournament/repositories"
	"github.com/Dosada05/tichu-tournament/standings"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	StartTournament(ctx context.Context, tournamentID uuid.UUID) (*RoundResult, error)
	// StartNextRound closes the current round and pairs the next one. A non-empty
	// idempotencyKey makes a retried call return the round created by the first one.
	StartNextRound(ctx context.Context, tournamentID uuid.UUID, idempotencyKey string) (*RoundResult, error)
	FinishTournament(ctx context.Context, tournamentID uuid.UUID) (*FinishResult, error)
	// GetStandings ranks teams by completed matches without persisting anything.
	GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentStanding, error)
}

// StandingsArchiver stores the final standings of a finished tournament and returns their URL.
type StandingsArchiver interface {
	Archive(ctx context.Context, t *models.Tournament, standings []models.TournamentStanding) (string, error)
}

type RoundResult struct {
	Tournament      *models.Tournament `json:"tournament,omitempty"`
	Round           *models.Round      `json:"round"`
	Matches         []models.Match     `json:"matches"`
	UnpairedTeamIDs []uuid.UUID        `json:"unpaired_team_ids"`
	// Replayed is set when an idempotency key matched an existing round.
	Replayed bool `json:"-"`
}

type FinishResult struct {
	Tournament     *models.Tournament          `json:"tournament"`
	FinalStandings []models.TournamentStanding `json:"final_standings"`
	StandingsURL   string                      `json:"standings_url,omitempty"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	gameRepo       repositories.GameRepository
	drawGenerator  brackets.PairingGenerator
	swissGenerator brackets.PairingGenerator
	archiver       StandingsArchiver
	recorder       Recorder
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	gameRepo repositories.GameRepository,
	drawGenerator brackets.PairingGenerator,
	swissGenerator brackets.PairingGenerator,
	archiver StandingsArchiver, // может быть nil: архив отключен
	recorder Recorder,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		gameRepo:       gameRepo,
		drawGenerator:  drawGenerator,
		swissGenerator: swissGenerator,
		archiver:       archiver,
		recorder:       recorder,
		logger:         logger,
	}
}

func (s *tournamentService) StartTournament(ctx context.Context, tournamentID uuid.UUID) (*RoundResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "load tournament")
	}
	if tournament.Status != models.StatusSetup {
		return nil, ErrTournamentNotInSetup
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list teams")
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	round, matches, err := s.resumeFirstRound(ctx, tournament, teams)
	if err != nil {
		return nil, err
	}
	if round == nil {
		pairings, err := s.draw(ctx, tournament, teams)
		if err != nil {
			return nil, err
		}
		round, matches, err = s.createRound(ctx, tournamentID, 1, "", pairings)
		if err != nil {
			return nil, err
		}
	}
	unpaired := unpairedTeams(matches, teams)

	totalRounds := models.EstimateTotalRounds(len(teams))
	if err := s.tournamentRepo.Activate(ctx, tournamentID, totalRounds); err != nil {
		return nil, handleRepositoryError(err, "activate tournament")
	}
	tournament.Status = models.StatusActive
	tournament.CurrentRound = 1
	tournament.TotalRounds = totalRounds

	s.recorder.RoundStarted(s.drawGenerator.GetName(), len(unpaired))
	s.logger.InfoContext(ctx, "tournament started",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)),
		slog.Int("unpaired", len(unpaired)),
		slog.Int("total_rounds", totalRounds),
	)

	return &RoundResult{
		Tournament:      tournament,
		Round:           round,
		Matches:         matches,
		UnpairedTeamIDs: unpaired,
	}, nil
}

func (s *tournamentService) draw(ctx context.Context, tournament *models.Tournament, teams []models.Team) (*brackets.Pairings, error) {
	pairings, err := s.drawGenerator.GeneratePairings(ctx, brackets.GeneratePairingsParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if errors.Is(err, brackets.ErrNotEnoughTeams) {
		return nil, ErrNotEnoughTeams
	}
	if err != nil {
		return nil, fmt.Errorf("failed to draw round 1 for tournament %s: %w", tournament.ID, err)
	}
	return pairings, nil
}

// resumeFirstRound returns round 1 left behind by an earlier start that failed
// before activation, or nil if there is none. Teams the earlier attempt did not
// get to are drawn among themselves at the tables that follow.
func (s *tournamentService) resumeFirstRound(ctx context.Context, tournament *models.Tournament, teams []models.Team) (*models.Round, []models.Match, error) {
	round, err := s.roundRepo.GetByNumber(ctx, tournament.ID, 1)
	if errors.Is(err, repositories.ErrRoundNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, handleRepositoryError(err, "look up round 1")
	}

	matches, err := s.matchRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, nil, handleRepositoryError(err, "list round 1 matches")
	}

	drawn := make(map[uuid.UUID]bool, len(matches)*2)
	lastTable := 0
	for _, m := range matches {
		drawn[m.Team1ID] = true
		drawn[m.Team2ID] = true
		lastTable = max(lastTable, m.TableNumber)
	}
	var rest []models.Team
	for _, t := range teams {
		if !drawn[t.ID] {
			rest = append(rest, t)
		}
	}

	added := 0
	if len(rest) >= 2 {
		pairings, err := s.draw(ctx, tournament, rest)
		if err != nil {
			return nil, nil, err
		}
		for i := range pairings.Matches {
			pairings.Matches[i].TableNumber += lastTable
		}
		created, err := s.createMatches(ctx, round, pairings.Matches, pairings.InitialStatus)
		if err != nil {
			return nil, nil, err
		}
		matches = append(matches, created...)
		added = len(created)
	}

	s.logger.WarnContext(ctx, "resuming round 1 of an interrupted start",
		slog.String("tournament_id", tournament.ID.String()),
		slog.Int("matches_found", len(matches)-added),
		slog.Int("matches_added", added),
	)
	return round, matches, nil
}

func (s *tournamentService) StartNextRound(ctx context.Context, tournamentID uuid.UUID, idempotencyKey string) (*RoundResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "load tournament")
	}

	if idempotencyKey != "" {
		replay, err := s.replayRound(ctx, tournament, idempotencyKey)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	switch tournament.Status {
	case models.StatusCompleted:
		return nil, ErrTournamentCompleted
	case models.StatusSetup:
		return nil, ErrTournamentNotActive
	}

	var current *models.Round
	if tournament.CurrentRound > 0 {
		current, err = s.roundRepo.GetByNumber(ctx, tournamentID, tournament.CurrentRound)
		if err != nil {
			return nil, handleRepositoryError(err, "load current round")
		}
		roundMatches, err := s.matchRepo.ListByRound(ctx, current.ID)
		if err != nil {
			return nil, handleRepositoryError(err, "list current round matches")
		}
		for _, m := range roundMatches {
			if m.Status != models.MatchStatusCompleted {
				return nil, ErrRoundIncomplete
			}
		}
	}

	table, err := s.loadStandings(ctx, tournamentID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	// Pairing happens before any write so a failed pairing leaves state untouched.
	pairings, err := s.swissGenerator.GeneratePairings(ctx, brackets.GeneratePairingsParams{
		Tournament: tournament,
		Standings:  table,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pair round %d for tournament %s: %w", tournament.CurrentRound+1, tournamentID, err)
	}
	if len(pairings.Matches) == 0 {
		return nil, ErrNoPairingsPossible
	}

	if current != nil {
		if err := s.roundRepo.UpdateStatus(ctx, current.ID, models.RoundStatusCompleted); err != nil {
			return nil, handleRepositoryError(err, "complete current round")
		}
	}
	if err := s.persistPoints(ctx, table); err != nil {
		return nil, err
	}

	nextNumber := tournament.CurrentRound + 1
	round, matches, err := s.createRound(ctx, tournamentID, nextNumber, idempotencyKey, pairings)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateCurrentRound(ctx, tournamentID, nextNumber); err != nil {
		return nil, handleRepositoryError(err, "advance current round")
	}
	tournament.CurrentRound = nextNumber

	s.recorder.RoundStarted(s.swissGenerator.GetName(), len(pairings.Unpaired))
	s.logger.InfoContext(ctx, "round started",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("round", nextNumber),
		slog.Int("matches", len(matches)),
		slog.Int("unpaired", len(pairings.Unpaired)),
	)
	if len(pairings.Unpaired) > 0 {
		s.logger.WarnContext(ctx, "teams left unpaired",
			slog.String("tournament_id", tournamentID.String()),
			slog.Int("round", nextNumber),
			slog.Any("team_ids", pairings.Unpaired),
		)
	}

	return &RoundResult{
		Tournament:      tournament,
		Round:           round,
		Matches:         matches,
		UnpairedTeamIDs: pairings.Unpaired,
	}, nil
}

// replayRound returns the round already created under key, or nil if there is none.
// It also repairs current_round when the first attempt failed after inserting the round.
func (s *tournamentService) replayRound(ctx context.Context, tournament *models.Tournament, key string) (*RoundResult, error) {
	round, err := s.roundRepo.GetByIdempotencyKey(ctx, tournament.ID, key)
	if errors.Is(err, repositories.ErrRoundNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, handleRepositoryError(err, "look up idempotency key")
	}

	matches, err := s.matchRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, handleRepositoryError(err, "list replayed round matches")
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, handleRepositoryError(err, "list teams")
	}
	// current_round moves only after every match is written, so a lower value
	// means the first attempt may have stopped halfway through the matches.
	if tournament.CurrentRound < round.RoundNumber {
		matches, err = s.completeRound(ctx, tournament, round, matches)
		if err != nil {
			return nil, err
		}
		if err := s.tournamentRepo.UpdateCurrentRound(ctx, tournament.ID, round.RoundNumber); err != nil {
			return nil, handleRepositoryError(err, "repair current round")
		}
		tournament.CurrentRound = round.RoundNumber
	}

	s.logger.InfoContext(ctx, "round replayed for idempotency key",
		slog.String("tournament_id", tournament.ID.String()),
		slog.Int("round", round.RoundNumber),
	)
	return &RoundResult{
		Tournament:      tournament,
		Round:           round,
		Matches:         matches,
		UnpairedTeamIDs: unpairedTeams(matches, teams),
		Replayed:        true,
	}, nil
}

// completeRound rebuilds the Swiss pairing a round was created from, using the
// standings without the round's own matches, and writes the tables missing
// from existing. Stored tables that disagree with the pairing are not touched.
func (s *tournamentService) completeRound(ctx context.Context, tournament *models.Tournament, round *models.Round, existing []models.Match) ([]models.Match, error) {
	table, err := s.loadStandings(ctx, tournament.ID, round.ID)
	if err != nil {
		return nil, err
	}
	pairings, err := s.swissGenerator.GeneratePairings(ctx, brackets.GeneratePairingsParams{
		Tournament: tournament,
		Standings:  table,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to re-pair round %d for tournament %s: %w", round.RoundNumber, tournament.ID, err)
	}

	planned := make(map[int]brackets.Pairing, len(pairings.Matches))
	for _, p := range pairings.Matches {
		planned[p.TableNumber] = p
	}
	for _, m := range existing {
		p, ok := planned[m.TableNumber]
		if !ok || m.Team1ID != p.Team1ID || m.Team2ID != p.Team2ID {
			return nil, s.unrecoverableRound(ctx, round, m.TableNumber)
		}
		delete(planned, m.TableNumber)
	}
	var missing []brackets.Pairing
	for _, p := range pairings.Matches {
		if _, ok := planned[p.TableNumber]; ok {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return existing, nil
	}

	created, err := s.createMatches(ctx, round, missing, pairings.InitialStatus)
	if err != nil {
		return nil, err
	}
	matches := append(existing, created...)
	sort.Slice(matches, func(i, j int) bool { return matches[i].TableNumber < matches[j].TableNumber })

	s.logger.WarnContext(ctx, "completed interrupted round on replay",
		slog.String("tournament_id", tournament.ID.String()),
		slog.Int("round", round.RoundNumber),
		slog.Int("matches_added", len(created)),
	)
	return matches, nil
}

func (s *tournamentService) unrecoverableRound(ctx context.Context, round *models.Round, tableNumber int) error {
	s.logger.ErrorContext(ctx, "stored round does not match its pairing",
		slog.String("tournament_id", round.TournamentID.String()),
		slog.Int("round", round.RoundNumber),
		slog.Int("table", tableNumber),
	)
	return ErrRoundUnrecoverable
}

func (s *tournamentService) FinishTournament(ctx context.Context, tournamentID uuid.UUID) (*FinishResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "load tournament")
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	table, err := s.loadStandings(ctx, tournamentID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	table = standings.Rank(table)

	if tournament.CurrentRound > 0 {
		round, err := s.roundRepo.GetByNumber(ctx, tournamentID, tournament.CurrentRound)
		switch {
		case errors.Is(err, repositories.ErrRoundNotFound):
			s.logger.WarnContext(ctx, "current round missing while finishing tournament",
				slog.String("tournament_id", tournamentID.String()),
				slog.Int("round", tournament.CurrentRound),
			)
		case err != nil:
			return nil, handleRepositoryError(err, "load current round")
		default:
			if err := s.roundRepo.UpdateStatus(ctx, round.ID, models.RoundStatusCompleted); err != nil {
				return nil, handleRepositoryError(err, "complete current round")
			}
		}
	}

	if err := s.persistPoints(ctx, table); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, tournamentID, models.StatusCompleted); err != nil {
		return nil, handleRepositoryError(err, "complete tournament")
	}
	tournament.Status = models.StatusCompleted

	result := &FinishResult{Tournament: tournament, FinalStandings: table}
	if s.archiver != nil {
		url, err := s.archiver.Archive(ctx, tournament, table)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to archive final standings",
				slog.String("tournament_id", tournamentID.String()),
				slog.Any("error", err),
			)
		} else {
			result.StandingsURL = url
		}
	}

	s.recorder.TournamentFinished()
	s.logger.InfoContext(ctx, "tournament finished",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("rounds", tournament.CurrentRound),
	)
	return result, nil
}

func (s *tournamentService) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentStanding, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "load tournament")
	}
	table, err := s.loadStandings(ctx, tournamentID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return standings.Rank(table), nil
}

// loadStandings reads teams and completed matches in parallel, then the games of those matches.
// Matches of skipRound are left out; uuid.Nil keeps all of them.
func (s *tournamentService) loadStandings(ctx context.Context, tournamentID, skipRound uuid.UUID) ([]models.TournamentStanding, error) {
	var (
		teams   []models.Team
		matches []models.Match
		games   []models.Game
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "list teams")
		}
		return nil
	})
	g.Go(func() error {
		completed := models.MatchStatusCompleted
		all, err := s.matchRepo.ListByTournament(gCtx, tournamentID, &completed)
		if err != nil {
			return handleRepositoryError(err, "list completed matches")
		}
		matches = all[:0]
		ids := make([]uuid.UUID, 0, len(all))
		for _, m := range all {
			if skipRound != uuid.Nil && m.RoundID == skipRound {
				continue
			}
			matches = append(matches, m)
			ids = append(ids, m.ID)
		}
		games, err = s.gameRepo.ListByMatchIDs(gCtx, ids)
		if err != nil {
			return handleRepositoryError(err, "list games")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return standings.Compute(teams, matches, games), nil
}

// persistPoints overwrites total_points, so repeating it after a partial failure is safe.
func (s *tournamentService) persistPoints(ctx context.Context, table []models.TournamentStanding) error {
	for _, st := range table {
		if err := s.teamRepo.UpdateTotalPoints(ctx, st.TeamID, st.TotalPoints); err != nil {
			return handleRepositoryError(err, fmt.Sprintf("update points of team %s", st.TeamID))
		}
	}
	return nil
}

func (s *tournamentService) createRound(ctx context.Context, tournamentID uuid.UUID, number int, idempotencyKey string, pairings *brackets.Pairings) (*models.Round, []models.Match, error) {
	round := &models.Round{
		TournamentID: tournamentID,
		RoundNumber:  number,
		Status:       models.RoundStatusActive,
	}
	if idempotencyKey != "" {
		round.IdempotencyKey = &idempotencyKey
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		if errors.Is(err, repositories.ErrRoundConflict) {
			return nil, nil, wrapError(ErrPreconditionFailed, fmt.Sprintf("round %d already exists", number), err)
		}
		return nil, nil, handleRepositoryError(err, "create round")
	}

	matches, err := s.createMatches(ctx, round, pairings.Matches, pairings.InitialStatus)
	if err != nil {
		return nil, nil, err
	}
	return round, matches, nil
}

func (s *tournamentService) createMatches(ctx context.Context, round *models.Round, pairs []brackets.Pairing, status models.MatchStatus) ([]models.Match, error) {
	matches := make([]models.Match, 0, len(pairs))
	for _, p := range pairs {
		m := models.Match{
			RoundID:      round.ID,
			TournamentID: round.TournamentID,
			Team1ID:      p.Team1ID,
			Team2ID:      p.Team2ID,
			TableNumber:  p.TableNumber,
			Status:       status,
		}
		if err := s.matchRepo.Create(ctx, &m); err != nil {
			return nil, handleRepositoryError(err, fmt.Sprintf("create match at table %d", p.TableNumber))
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// unpairedTeams lists teams that have no match in matches.
func unpairedTeams(matches []models.Match, teams []models.Team) []uuid.UUID {
	inMatch := make(map[uuid.UUID]bool, len(matches)*2)
	for _, m := range matches {
		inMatch[m.Team1ID] = true
		inMatch[m.Team2ID] = true
	}
	out := []uuid.UUID{}
	for _, t := range teams {
		if !inMatch[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}
