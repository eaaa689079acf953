package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusPlaying   MatchStatus = "playing"
	MatchStatusCompleted MatchStatus = "completed"
)

// TeamSide identifies which slot of a match a team occupies.
type TeamSide int

const (
	SideNone TeamSide = 0
	Side1    TeamSide = 1
	Side2    TeamSide = 2
)

func (s TeamSide) Valid() bool {
	return s == Side1 || s == Side2
}

// GamesPerMatch is the number of games a match must own before it can be confirmed.
const GamesPerMatch = 4

type Match struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	RoundID        uuid.UUID   `json:"round_id" db:"round_id"`
	TournamentID   uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	Team1ID        uuid.UUID   `json:"team1_id" db:"team1_id"`
	Team2ID        uuid.UUID   `json:"team2_id" db:"team2_id"`
	TableNumber    int         `json:"table_number" db:"table_number"`
	Status         MatchStatus `json:"status" db:"status"`
	Team1Confirmed bool        `json:"team1_confirmed" db:"team1_confirmed"`
	Team2Confirmed bool        `json:"team2_confirmed" db:"team2_confirmed"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// SideOf returns the side the team plays on, or SideNone if it is not a party to the match.
func (m *Match) SideOf(teamID uuid.UUID) TeamSide {
	switch teamID {
	case m.Team1ID:
		return Side1
	case m.Team2ID:
		return Side2
	default:
		return SideNone
	}
}

// Confirmed reports the confirmation flag of the given side.
func (m *Match) Confirmed(side TeamSide) bool {
	if side == Side1 {
		return m.Team1Confirmed
	}
	return m.Team2Confirmed
}

// Locked is true once either side has signed off; games can no longer be edited.
func (m *Match) Locked() bool {
	return m.Team1Confirmed || m.Team2Confirmed
}

// Opponent returns the id of the team facing teamID.
func (m *Match) Opponent(teamID uuid.UUID) uuid.UUID {
	if teamID == m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}
