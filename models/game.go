package models

import (
	"time"

	"github.com/google/uuid"
)

type Game struct {
	ID              uuid.UUID `json:"id" db:"id"`
	MatchID         uuid.UUID `json:"match_id" db:"match_id"`
	GameNumber      int       `json:"game_number" db:"game_number"`
	Team1Score      int       `json:"team1_score" db:"team1_score"`
	Team2Score      int       `json:"team2_score" db:"team2_score"`
	Team1TotalScore int       `json:"team1_total_score" db:"team1_total_score"`
	Team2TotalScore int       `json:"team2_total_score" db:"team2_total_score"`
	Team1DoubleWin  bool      `json:"team1_double_win" db:"team1_double_win"`
	Team2DoubleWin  bool      `json:"team2_double_win" db:"team2_double_win"`
	Beschiss        bool      `json:"beschiss" db:"beschiss"` // informational only
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// TotalFor returns the derived total score the given side earned in this game.
func (g *Game) TotalFor(side TeamSide) int {
	if side == Side1 {
		return g.Team1TotalScore
	}
	return g.Team2TotalScore
}
