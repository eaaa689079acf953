package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/Dosada05/tichu-tournament/repositories"
)

type TeamService interface {
	// TeamAccess returns the team owning token with its tournament embedded.
	TeamAccess(ctx context.Context, token string) (*models.Team, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
}

func NewTeamService(teamRepo repositories.TeamRepository, tournamentRepo repositories.TournamentRepository) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *teamService) TeamAccess(ctx context.Context, token string) (*models.Team, error) {
	team, err := resolveTeam(ctx, s.teamRepo, token)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "load team tournament")
	}
	team.Tournament = tournament
	return team, nil
}

// resolveTeam looks up the team whose access token equals token.
func resolveTeam(ctx context.Context, teamRepo repositories.TeamRepository, token string) (*models.Team, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTeamTokenRequired
	}

	team, err := teamRepo.GetByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrInvalidTeamToken
		}
		return nil, dependencyError("resolve team token", err)
	}
	return team, nil
}
