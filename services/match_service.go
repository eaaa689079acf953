package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/Dosada05/tichu-tournament/repositories"
	"github.com/Dosada05/tichu-tournament/scoring"
	"github.com/google/uuid"
)

type MatchService interface {
	// ConfirmMatch signs the match off for the caller's team, or withdraws the
	// sign-off when unconfirm is set.
	ConfirmMatch(ctx context.Context, token string, matchID uuid.UUID, unconfirm bool) (*models.Match, error)
	SubmitScores(ctx context.Context, token string, input SubmitScoresInput) (*SubmitScoresResult, error)
}

// SubmitScoresInput addresses a game either by GameID (correction) or by
// MatchID and GameNumber (first submission).
type SubmitScoresInput struct {
	GameID     *uuid.UUID `json:"game_id"`
	MatchID    *uuid.UUID `json:"match_id"`
	GameNumber *int       `json:"game_number"`

	Team1Score      int  `json:"team1_score"`
	Team2Score      int  `json:"team2_score"`
	Team1TotalScore int  `json:"team1_total_score"`
	Team2TotalScore int  `json:"team2_total_score"`
	Team1DoubleWin  bool `json:"team1_double_win"`
	Team2DoubleWin  bool `json:"team2_double_win"`

	Beschiss bool    `json:"beschiss"`
	Notes    *string `json:"notes"`

	Participants []scoring.Participant `json:"participants"`
}

type SubmitScoresResult struct {
	GameID          uuid.UUID `json:"game_id"`
	Team1TotalScore int       `json:"team1_total_score"`
	Team2TotalScore int       `json:"team2_total_score"`
}

type matchService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	gameRepo  repositories.GameRepository
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewMatchService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	gameRepo repositories.GameRepository,
	recorder Recorder,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &matchService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		gameRepo:  gameRepo,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *matchService) ConfirmMatch(ctx context.Context, token string, matchID uuid.UUID, unconfirmMatch bool) (*models.Match, error) {
	team, err := resolveTeam(ctx, s.teamRepo, token)
	if err != nil {
		return nil, err
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, handleRepositoryError(err, "load match")
	}
	side := match.SideOf(team.ID)
	if side == models.SideNone {
		return nil, ErrNotMatchParticipant
	}

	action := "confirm"
	var change confirmationChange
	if unconfirmMatch {
		action = "unconfirm"
		change = unconfirm(side)
	} else {
		count, err := s.gameRepo.CountByMatch(ctx, matchID)
		if err != nil {
			return nil, handleRepositoryError(err, "count match games")
		}
		change, err = confirm(match, side, count, s.now().UTC())
		if err != nil {
			return nil, err
		}
	}

	if err := s.matchRepo.UpdateConfirmation(ctx, matchID, change.Side, change.Confirmed, change.Status, change.CompletedAt); err != nil {
		return nil, handleRepositoryError(err, "update match confirmation")
	}
	change.apply(match)

	s.recorder.MatchConfirmation(action)
	s.logger.InfoContext(ctx, "match confirmation changed",
		slog.String("match_id", matchID.String()),
		slog.String("team_id", team.ID.String()),
		slog.String("action", action),
		slog.String("status", string(match.Status)),
	)
	return match, nil
}

func (s *matchService) SubmitScores(ctx context.Context, token string, input SubmitScoresInput) (*SubmitScoresResult, error) {
	if input.GameNumber != nil && (*input.GameNumber < 1 || *input.GameNumber > models.GamesPerMatch) {
		return nil, ErrInvalidGameNumber
	}
	if input.GameID == nil && (input.MatchID == nil || input.GameNumber == nil) {
		return nil, ErrGameAddressRequired
	}

	team, err := resolveTeam(ctx, s.teamRepo, token)
	if err != nil {
		return nil, err
	}

	var existing *models.Game
	var matchID uuid.UUID
	var gameNumber int
	if input.GameID != nil {
		existing, err = s.gameRepo.GetByID(ctx, *input.GameID)
		if err != nil {
			return nil, handleRepositoryError(err, "load game")
		}
		matchID, gameNumber = existing.MatchID, existing.GameNumber
	} else {
		matchID, gameNumber = *input.MatchID, *input.GameNumber
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, handleRepositoryError(err, "load match")
	}
	if match.SideOf(team.ID) == models.SideNone {
		return nil, ErrNotMatchParticipant
	}
	if match.Locked() {
		return nil, ErrMatchAlreadyConfirmed
	}

	if existing == nil {
		_, err := s.gameRepo.GetByMatchAndNumber(ctx, matchID, gameNumber)
		switch {
		case err == nil:
			return nil, newError(ErrPreconditionFailed, fmt.Sprintf("Game number %d already exists for this match", gameNumber))
		case !errors.Is(err, repositories.ErrGameNotFound):
			return nil, handleRepositoryError(err, "check game number")
		}
	}

	derived, err := scoring.Validate(scoring.Submission{
		Participants:    input.Participants,
		Team1Score:      input.Team1Score,
		Team2Score:      input.Team2Score,
		Team1TotalScore: input.Team1TotalScore,
		Team2TotalScore: input.Team2TotalScore,
		Team1DoubleWin:  input.Team1DoubleWin,
		Team2DoubleWin:  input.Team2DoubleWin,
	})
	if err != nil {
		s.recorder.ScoreSubmitted("rejected")
		return nil, wrapError(ErrValidationFailed, err.Error(), err)
	}

	game := &models.Game{
		MatchID:         matchID,
		GameNumber:      gameNumber,
		Team1Score:      input.Team1Score,
		Team2Score:      input.Team2Score,
		Team1TotalScore: derived.Team1TotalScore,
		Team2TotalScore: derived.Team2TotalScore,
		Team1DoubleWin:  input.Team1DoubleWin,
		Team2DoubleWin:  input.Team2DoubleWin,
		Beschiss:        input.Beschiss,
		Notes:           input.Notes,
	}
	if existing != nil {
		game.ID = existing.ID
	}
	if err := s.gameRepo.Upsert(ctx, game); err != nil {
		return nil, handleRepositoryError(err, "save game")
	}

	if err := s.gameRepo.ReplaceParticipants(ctx, game.ID, toGameParticipants(game.ID, input.Participants)); err != nil {
		return nil, handleRepositoryError(err, "save game participants")
	}

	if match.Status == models.MatchStatusPending {
		if err := s.matchRepo.MarkPlaying(ctx, matchID); err != nil {
			return nil, handleRepositoryError(err, "mark match playing")
		}
	}

	s.recorder.ScoreSubmitted("accepted")
	s.logger.InfoContext(ctx, "game scores saved",
		slog.String("match_id", matchID.String()),
		slog.String("game_id", game.ID.String()),
		slog.Int("game_number", gameNumber),
		slog.String("team_id", team.ID.String()),
		slog.Bool("correction", existing != nil),
	)

	return &SubmitScoresResult{
		GameID:          game.ID,
		Team1TotalScore: game.Team1TotalScore,
		Team2TotalScore: game.Team2TotalScore,
	}, nil
}

func toGameParticipants(gameID uuid.UUID, ps []scoring.Participant) []models.GameParticipant {
	out := make([]models.GameParticipant, len(ps))
	for i, p := range ps {
		out[i] = models.GameParticipant{
			GameID:         gameID,
			PlayerID:       p.PlayerID,
			Team:           models.TeamSide(p.Team),
			Position:       p.Position,
			TichuCall:      p.TichuCall,
			GrandTichuCall: p.GrandTichuCall,
			TichuSuccess:   p.TichuSuccess,
			BombCount:      p.BombCount,
		}
	}
	return out
}
