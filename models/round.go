package models

import (
	"time"

	"github.com/google/uuid"
)

type RoundStatus string

const (
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
)

type Round struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	TournamentID   uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	RoundNumber    int         `json:"round_number" db:"round_number"`
	Status         RoundStatus `json:"status" db:"status"`
	IdempotencyKey *string     `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
