package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentInvalidStatus = errors.New("invalid tournament status")
)

type TournamentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// Activate moves a tournament out of setup into round 1.
	Activate(ctx context.Context, id uuid.UUID, totalRounds int) error
	// UpdateCurrentRound never lowers current_round.
	UpdateCurrentRound(ctx context.Context, id uuid.UUID, round int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	query := `
		SELECT id, name, status, current_round, total_rounds, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Status, &t.CurrentRound, &t.TotalRounds, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Activate(ctx context.Context, id uuid.UUID, totalRounds int) error {
	query := `
		UPDATE tournaments
		SET status = $1, current_round = GREATEST(current_round, 1), total_rounds = $2
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, models.StatusActive, totalRounds, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateCurrentRound(ctx context.Context, id uuid.UUID, round int) error {
	query := `UPDATE tournaments SET current_round = GREATEST(current_round, $1) WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, round, id)
	if err != nil {
		return fmt.Errorf("failed to update current round of tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		if pqErr.Code == pqCheckViolation && pqErr.Constraint == "tournaments_status_check" {
			return ErrTournamentInvalidStatus
		}
	}
	return err
}
