// Package standings folds completed matches into per-team point totals.
package standings

import (
	"sort"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

// Compute returns one standing per team, sorted by total points descending.
// Only matches with status completed contribute points and opponent history.
// Teams with equal points keep their order in teams.
func Compute(teams []models.Team, matches []models.Match, games []models.Game) []models.TournamentStanding {
	gamesByMatch := make(map[uuid.UUID][]models.Game, len(matches))
	for _, g := range games {
		gamesByMatch[g.MatchID] = append(gamesByMatch[g.MatchID], g)
	}

	result := make([]models.TournamentStanding, len(teams))
	index := make(map[uuid.UUID]int, len(teams))
	for i, t := range teams {
		result[i] = models.TournamentStanding{
			TeamID:        t.ID,
			TeamName:      t.Name,
			PlayedAgainst: []uuid.UUID{},
		}
		index[t.ID] = i
	}

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted {
			continue
		}
		for _, teamID := range []uuid.UUID{m.Team1ID, m.Team2ID} {
			i, ok := index[teamID]
			if !ok {
				continue
			}
			side := m.SideOf(teamID)
			for _, g := range gamesByMatch[m.ID] {
				result[i].TotalPoints += g.TotalFor(side)
			}
			result[i].PlayedAgainst = appendOpponent(result[i].PlayedAgainst, m.Opponent(teamID))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalPoints > result[j].TotalPoints
	})
	return result
}

// Rank assigns 1-based ranks in slice order.
func Rank(s []models.TournamentStanding) []models.TournamentStanding {
	for i := range s {
		s[i].Rank = i + 1
	}
	return s
}

func appendOpponent(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
