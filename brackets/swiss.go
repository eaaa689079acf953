package brackets

import (
	"context"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

// SwissGenerator pairs follow-up rounds by ranking. Each team, in ranked order,
// takes the first lower-ranked team that is still free and that it has not met.
// There is no backtracking, so a team whose remaining candidates are all past
// opponents sits the round out.
type SwissGenerator struct{}

func NewSwissGenerator() PairingGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

func (g *SwissGenerator) GeneratePairings(ctx context.Context, params GeneratePairingsParams) (*Pairings, error) {
	ranked := params.Standings

	history := make(map[uuid.UUID]map[uuid.UUID]bool, len(ranked))
	for _, st := range ranked {
		met := make(map[uuid.UUID]bool, len(st.PlayedAgainst))
		for _, id := range st.PlayedAgainst {
			met[id] = true
		}
		history[st.TeamID] = met
	}

	result := &Pairings{
		Matches:       make([]Pairing, 0, len(ranked)/2),
		Unpaired:      []uuid.UUID{},
		InitialStatus: models.MatchStatusPending,
	}
	paired := make(map[uuid.UUID]bool, len(ranked))

	for i, current := range ranked {
		if paired[current.TeamID] {
			continue
		}
		for _, candidate := range ranked[i+1:] {
			if paired[candidate.TeamID] || history[current.TeamID][candidate.TeamID] {
				continue
			}
			paired[current.TeamID] = true
			paired[candidate.TeamID] = true
			result.Matches = append(result.Matches, Pairing{
				Team1ID:     current.TeamID,
				Team2ID:     candidate.TeamID,
				TableNumber: len(result.Matches) + 1,
			})
			break
		}
		if !paired[current.TeamID] {
			result.Unpaired = append(result.Unpaired, current.TeamID)
		}
	}
	return result, nil
}
