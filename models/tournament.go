package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusSetup     TournamentStatus = "setup"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament представляет турнир.
type Tournament struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	TotalRounds  int              `json:"total_rounds" db:"total_rounds"` // estimate, set on start
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// EstimateTotalRounds mirrors the estimate stored when a tournament starts.
func EstimateTotalRounds(teamCount int) int {
	return (teamCount + 1) / 2 * 2
}
