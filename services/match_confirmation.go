package services

import (
	"fmt"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
)

// confirmationChange is the write produced by one confirm or unconfirm action.
// Only the acting side's flag is part of it.
type confirmationChange struct {
	Side        models.TeamSide
	Confirmed   bool
	Status      models.MatchStatus
	CompletedAt *time.Time
}

// confirm signs the match off for side. The match completes when the other
// side has already signed off, otherwise its status is left as it is.
func confirm(m *models.Match, side models.TeamSide, gameCount int, now time.Time) (confirmationChange, error) {
	if gameCount != models.GamesPerMatch {
		return confirmationChange{}, wrapError(ErrPreconditionFailed,
			fmt.Sprintf("match must have exactly %d games before confirmation (found %d)", models.GamesPerMatch, gameCount),
			ErrMatchIncomplete)
	}

	change := confirmationChange{
		Side:        side,
		Confirmed:   true,
		Status:      m.Status,
		CompletedAt: m.CompletedAt,
	}
	if m.Confirmed(otherSide(side)) {
		change.Status = models.MatchStatusCompleted
		if change.CompletedAt == nil {
			stamp := now
			change.CompletedAt = &stamp
		}
	}
	return change, nil
}

// unconfirm withdraws side's sign-off and reopens the match.
func unconfirm(side models.TeamSide) confirmationChange {
	return confirmationChange{
		Side:      side,
		Confirmed: false,
		Status:    models.MatchStatusPlaying,
	}
}

func (c confirmationChange) apply(m *models.Match) {
	if c.Side == models.Side1 {
		m.Team1Confirmed = c.Confirmed
	} else {
		m.Team2Confirmed = c.Confirmed
	}
	m.Status = c.Status
	m.CompletedAt = c.CompletedAt
}

func otherSide(side models.TeamSide) models.TeamSide {
	if side == models.Side1 {
		return models.Side2
	}
	return models.Side1
}
