package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
)

// FinalStandingsDocument is the archived snapshot of a finished tournament.
type FinalStandingsDocument struct {
	TournamentID   string                      `json:"tournament_id"`
	TournamentName string                      `json:"tournament_name"`
	Rounds         int                         `json:"rounds"`
	FinishedAt     time.Time                   `json:"finished_at"`
	Standings      []models.TournamentStanding `json:"standings"`
}

// StandingsArchiver writes the final table of a tournament to an ObjectStore.
type StandingsArchiver struct {
	store    ObjectStore
	now      func() time.Time
}

func NewStandingsArchiver(store ObjectStore) *StandingsArchiver {
	return &StandingsArchiver{store: store, now: time.Now}
}

func StandingsKey(tournamentID string) string {
	return fmt.Sprintf("tournaments/%s/final-standings.json", tournamentID)
}

// Archive uploads the final standings and returns their public URL.
func (a *StandingsArchiver) Archive(ctx context.Context, t *models.Tournament, standings []models.TournamentStanding) (string, error) {
	doc := FinalStandingsDocument{
		TournamentID:   t.ID.String(),
		TournamentName: t.Name,
		Rounds:         t.CurrentRound,
		FinishedAt:     a.now().UTC(),
		Standings:      standings,
	}
	body, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failed to encode final standings: %w", err)
	}

	obj, err := a.store.Put(ctx, StandingsKey(doc.TournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}
