package services

import (
	"testing"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	now := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name          string
		match         models.Match
		side          models.TeamSide
		games         int
		wantStatus    models.MatchStatus
		wantCompleted *time.Time
		wantErr       error
	}{
		{
			name:    "fewer than four games",
			match:   models.Match{Status: models.MatchStatusPlaying},
			side:    models.Side1,
			games:   3,
			wantErr: ErrMatchIncomplete,
		},
		{
			name:    "more than four games",
			match:   models.Match{Status: models.MatchStatusPlaying, Team2Confirmed: true},
			side:    models.Side1,
			games:   5,
			wantErr: ErrMatchIncomplete,
		},
		{
			name:       "first side keeps status",
			match:      models.Match{Status: models.MatchStatusPlaying},
			side:       models.Side2,
			games:      4,
			wantStatus: models.MatchStatusPlaying,
		},
		{
			name:       "first side on pending match",
			match:      models.Match{Status: models.MatchStatusPending},
			side:       models.Side1,
			games:      4,
			wantStatus: models.MatchStatusPending,
		},
		{
			name:          "second side completes",
			match:         models.Match{Status: models.MatchStatusPlaying, Team1Confirmed: true},
			side:          models.Side2,
			games:         4,
			wantStatus:    models.MatchStatusCompleted,
			wantCompleted: &now,
		},
		{
			name:          "re-confirm keeps original completion time",
			match:         models.Match{Status: models.MatchStatusCompleted, Team1Confirmed: true, Team2Confirmed: true, CompletedAt: &earlier},
			side:          models.Side1,
			games:         4,
			wantStatus:    models.MatchStatusCompleted,
			wantCompleted: &earlier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := confirm(&tt.match, tt.side, tt.games, now)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrPreconditionFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.side, change.Side)
			assert.True(t, change.Confirmed)
			assert.Equal(t, tt.wantStatus, change.Status)
			assert.Equal(t, tt.wantCompleted, change.CompletedAt)
		})
	}
}

func TestConfirm_IncompleteMessageReportsCount(t *testing.T) {
	_, err := confirm(&models.Match{}, models.Side1, 2, time.Now())
	require.Error(t, err)
	assert.Equal(t, "match must have exactly 4 games before confirmation (found 2)", err.Error())
}

func TestUnconfirm_AlwaysReopens(t *testing.T) {
	completedAt := time.Now()
	m := models.Match{
		Status:         models.MatchStatusCompleted,
		Team1Confirmed: true,
		Team2Confirmed: true,
		CompletedAt:    &completedAt,
	}

	change := unconfirm(models.Side2)
	change.apply(&m)

	assert.Equal(t, models.MatchStatusPlaying, m.Status)
	assert.Nil(t, m.CompletedAt)
	assert.True(t, m.Team1Confirmed, "other side keeps its flag")
	assert.False(t, m.Team2Confirmed)
}

func TestUnconfirm_WithoutPriorConfirmation(t *testing.T) {
	m := models.Match{Status: models.MatchStatusPending}

	unconfirm(models.Side1).apply(&m)

	assert.Equal(t, models.MatchStatusPlaying, m.Status)
	assert.False(t, m.Team1Confirmed)
	assert.False(t, m.Team2Confirmed)
}
