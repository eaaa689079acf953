package models

import "github.com/google/uuid"

type TournamentStanding struct {
	TeamID      uuid.UUID `json:"team_id"`
	TeamName    string    `json:"team_name"`
	TotalPoints int       `json:"total_points"`
	Rank        int       `json:"rank,omitempty"` // 1-based, set once the table is ranked

	PlayedAgainst []uuid.UUID `json:"-"`
}
