package models

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"team_name" db:"team_name"`
	Player1ID    *string   `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID    *string   `json:"player2_id,omitempty" db:"player2_id"`
	AccessToken  string    `json:"-" db:"access_token"`
	TotalPoints  int       `json:"total_points" db:"total_points"` // authoritative only after a round closes
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}
