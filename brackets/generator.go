package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

// ErrNotEnoughTeams is returned when fewer than two teams are given to a draw.
var ErrNotEnoughTeams = errors.New("not enough teams to draw a round (minimum 2)")

// Pairing is one table of a round.
type Pairing struct {
	Team1ID     uuid.UUID
	Team2ID     uuid.UUID
	TableNumber int
}

// Pairings is the outcome of pairing a round. Unpaired teams get no match.
type Pairings struct {
	Matches       []Pairing
	Unpaired      []uuid.UUID
	InitialStatus models.MatchStatus
}

type GeneratePairingsParams struct {
	Tournament *models.Tournament
	Teams      []models.Team
	// Standings in ranked order, with opponent history. Used by Swiss rounds.
	Standings []models.TournamentStanding
}

type PairingGenerator interface {
	GeneratePairings(ctx context.Context, params GeneratePairingsParams) (*Pairings, error)

	GetName() string
}
