package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrGameInvalidMatch      = errors.New("game match reference is invalid")
	ErrGameConstraintFailure = errors.New("game violates a database constraint")
)

type GameRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByMatchAndNumber(ctx context.Context, matchID uuid.UUID, gameNumber int) (*models.Game, error)
	CountByMatch(ctx context.Context, matchID uuid.UUID) (int, error)
	ListByMatchIDs(ctx context.Context, matchIDs []uuid.UUID) ([]models.Game, error)
	// Upsert inserts the game or overwrites the one with the same (match, game number).
	// g.ID is set to the id of the stored row.
	Upsert(ctx context.Context, g *models.Game) error
	// ReplaceParticipants deletes the game's participants and inserts ps in one transaction.
	ReplaceParticipants(ctx context.Context, gameID uuid.UUID, ps []models.GameParticipant) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, match_id, game_number, team1_score, team2_score, team1_total_score, team2_total_score,
	team1_double_win, team2_double_win, beschiss, notes, created_at`

func scanGame(row rowScanner, g *models.Game) error {
	return row.Scan(
		&g.ID, &g.MatchID, &g.GameNumber, &g.Team1Score, &g.Team2Score, &g.Team1TotalScore, &g.Team2TotalScore,
		&g.Team1DoubleWin, &g.Team2DoubleWin, &g.Beschiss, &g.Notes, &g.CreatedAt,
	)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresGameRepository) GetByMatchAndNumber(ctx context.Context, matchID uuid.UUID, gameNumber int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE match_id = $1 AND game_number = $2`
	return r.getOne(ctx, query, matchID, gameNumber)
}

func (r *postgresGameRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Game, error) {
	g := &models.Game{}
	if err := scanGame(r.db.QueryRowContext(ctx, query, args...), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGameRepository) CountByMatch(ctx context.Context, matchID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE match_id = $1`, matchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games of match %s: %w", matchID, err)
	}
	return count, nil
}

func (r *postgresGameRepository) ListByMatchIDs(ctx context.Context, matchIDs []uuid.UUID) ([]models.Game, error) {
	games := make([]models.Game, 0)
	if len(matchIDs) == 0 {
		return games, nil
	}

	query := `SELECT ` + gameColumns + ` FROM games WHERE match_id = ANY($1::uuid[]) ORDER BY match_id, game_number`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(matchIDs)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Game
		if scanErr := scanGame(rows, &g); scanErr != nil {
			return nil, scanErr
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *postgresGameRepository) Upsert(ctx context.Context, g *models.Game) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	query := `
		INSERT INTO games (
			id, match_id, game_number, team1_score, team2_score, team1_total_score, team2_total_score,
			team1_double_win, team2_double_win, beschiss, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (match_id, game_number) DO UPDATE SET
			team1_score = EXCLUDED.team1_score,
			team2_score = EXCLUDED.team2_score,
			team1_total_score = EXCLUDED.team1_total_score,
			team2_total_score = EXCLUDED.team2_total_score,
			team1_double_win = EXCLUDED.team1_double_win,
			team2_double_win = EXCLUDED.team2_double_win,
			beschiss = EXCLUDED.beschiss,
			notes = EXCLUDED.notes
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		g.ID, g.MatchID, g.GameNumber, g.Team1Score, g.Team2Score, g.Team1TotalScore, g.Team2TotalScore,
		g.Team1DoubleWin, g.Team2DoubleWin, g.Beschiss, g.Notes,
	).Scan(&g.ID, &g.CreatedAt)

	return r.handleGameError(err)
}

func (r *postgresGameRepository) ReplaceParticipants(ctx context.Context, gameID uuid.UUID, ps []models.GameParticipant) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit participants of game %s: %w", gameID, cErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM game_participants WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to delete participants of game %s: %w", gameID, err)
	}
	for _, p := range ps {
		if err = r.insertParticipant(ctx, tx, gameID, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresGameRepository) insertParticipant(ctx context.Context, exec SQLExecutor, gameID uuid.UUID, p models.GameParticipant) error {
	query := `
		INSERT INTO game_participants
			(game_id, player_id, team, position, tichu_call, grand_tichu_call, tichu_success, bomb_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		gameID, p.PlayerID, p.Team, p.Position, p.TichuCall, p.GrandTichuCall, p.TichuSuccess, p.BombCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant %s of game %s: %w", p.PlayerID, gameID, r.handleGameError(err))
	}
	return nil
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			if pqErr.Constraint == "games_match_id_fkey" {
				return ErrGameInvalidMatch
			}
			return ErrGameNotFound
		case pqCheckViolation:
			return fmt.Errorf("%w: %s", ErrGameConstraintFailure, pqErr.Constraint)
		}
	}
	return err
}
