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
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundConflict means a round with the same number or idempotency key already exists.
	ErrRoundConflict = errors.New("round already exists")
)

type RoundRepository interface {
	Create(ctx context.Context, round *models.Round) error
	GetByNumber(ctx context.Context, tournamentID uuid.UUID, number int) (*models.Round, error)
	GetByIdempotencyKey(ctx context.Context, tournamentID uuid.UUID, key string) (*models.Round, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RoundStatus) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

const roundColumns = `id, tournament_id, round_number, status, idempotency_key, created_at`

func scanRound(row rowScanner, rd *models.Round) error {
	return row.Scan(&rd.ID, &rd.TournamentID, &rd.RoundNumber, &rd.Status, &rd.IdempotencyKey, &rd.CreatedAt)
}

func (r *postgresRoundRepository) Create(ctx context.Context, rd *models.Round) error {
	if rd.ID == uuid.Nil {
		rd.ID = uuid.New()
	}
	query := `
		INSERT INTO rounds (id, tournament_id, round_number, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		rd.ID, rd.TournamentID, rd.RoundNumber, rd.Status, rd.IdempotencyKey,
	).Scan(&rd.CreatedAt)

	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, tournamentID uuid.UUID, number int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE tournament_id = $1 AND round_number = $2`
	return r.getOne(ctx, query, tournamentID, number)
}

func (r *postgresRoundRepository) GetByIdempotencyKey(ctx context.Context, tournamentID uuid.UUID, key string) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE tournament_id = $1 AND idempotency_key = $2`
	return r.getOne(ctx, query, tournamentID, key)
}

func (r *postgresRoundRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Round, error) {
	rd := &models.Round{}
	if err := scanRound(r.db.QueryRowContext(ctx, query, args...), rd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return rd, nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RoundStatus) error {
	query := `UPDATE rounds SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of round %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrRoundConflict
		case pqForeignKeyViolation:
			return ErrTournamentNotFound
		}
	}
	return err
}
