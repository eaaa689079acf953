package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetByAccessToken(ctx context.Context, token string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Team, error)
	UpdateTotalPoints(ctx context.Context, id uuid.UUID, points int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, tournament_id, team_name, player1_id, player2_id, access_token, total_points, created_at`

func scanTeam(row rowScanner, t *models.Team) error {
	return row.Scan(
		&t.ID, &t.TournamentID, &t.Name, &t.Player1ID, &t.Player2ID, &t.AccessToken, &t.TotalPoints, &t.CreatedAt,
	)
}

func (r *postgresTeamRepository) GetByAccessToken(ctx context.Context, token string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE access_token = $1`

	t := &models.Team{}
	if err := scanTeam(r.db.QueryRowContext(ctx, query, token), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByTournament returns teams in registration order, which is also the tie order of the standings.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if scanErr := scanTeam(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateTotalPoints(ctx context.Context, id uuid.UUID, points int) error {
	query := `UPDATE teams SET total_points = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, points, id)
	if err != nil {
		return fmt.Errorf("failed to update total points of team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
