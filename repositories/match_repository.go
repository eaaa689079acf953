package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInvalidTeam = errors.New("match team reference is invalid")
	ErrMatchInvalidSide = errors.New("invalid match side")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID, status *models.MatchStatus) ([]models.Match, error)
	// UpdateConfirmation writes one side's flag together with the resulting status.
	// The other side's flag is left untouched.
	UpdateConfirmation(ctx context.Context, id uuid.UUID, side models.TeamSide, confirmed bool, status models.MatchStatus, completedAt *time.Time) error
	// MarkPlaying moves a pending match to playing and is a no-op otherwise.
	MarkPlaying(ctx context.Context, id uuid.UUID) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, round_id, tournament_id, team1_id, team2_id, table_number, status,
	team1_confirmed, team2_confirmed, completed_at, created_at`

func scanMatch(row rowScanner, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.RoundID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.TableNumber, &m.Status,
		&m.Team1Confirmed, &m.Team2Confirmed, &m.CompletedAt, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO matches (id, round_id, tournament_id, team1_id, team2_id, table_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.RoundID, m.TournamentID, m.Team1ID, m.Team2ID, m.TableNumber, m.Status,
	).Scan(&m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, roundID uuid.UUID) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE round_id = $1 ORDER BY table_number ASC`
	return r.list(ctx, query, roundID)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID, status *models.MatchStatus) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at ASC, table_number ASC`
	return r.list(ctx, query, args...)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateConfirmation(ctx context.Context, id uuid.UUID, side models.TeamSide, confirmed bool, status models.MatchStatus, completedAt *time.Time) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %d", ErrMatchInvalidSide, side)
	}
	column := "team1_confirmed"
	if side == models.Side2 {
		column = "team2_confirmed"
	}

	query := `UPDATE matches SET ` + column + ` = $1, status = $2, completed_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, confirmed, status, completedAt, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) MarkPlaying(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`
	if _, err := r.db.ExecContext(ctx, query, models.MatchStatusPlaying, id, models.MatchStatusPending); err != nil {
		return fmt.Errorf("failed to mark match %s as playing: %w", id, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			switch pqErr.Constraint {
			case "matches_team1_id_fkey", "matches_team2_id_fkey":
				return ErrMatchInvalidTeam
			case "matches_round_id_fkey":
				return ErrRoundNotFound
			case "matches_tournament_id_fkey":
				return ErrTournamentNotFound
			}
		case pqCheckViolation:
			if pqErr.Constraint == "matches_distinct_teams_check" {
				return ErrMatchInvalidTeam
			}
		}
	}
	return err
}
