// Package scoring validates a submitted Tichu game and derives the total scores
// from the raw card points, the calls made by each player and the double win.
package scoring

import (
	"errors"
	"fmt"
)

const (
	ParticipantsPerGame = 4
	PlayersPerTeam      = 2
	CardPointsPerGame   = 100
	MaxBombsPerPlayer   = 3

	TichuBonus      = 100
	GrandTichuBonus = 200
	DoubleWinBonus  = 200
)

// ErrInvalidSubmission is wrapped by every ValidationError.
var ErrInvalidSubmission = errors.New("invalid game submission")

// ValidationError describes the first rule a submission broke.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSubmission
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Participant is one player's line as submitted. Team is 1 or 2; Position is nil
// for players who did not finish (the losing pair of a double win).
type Participant struct {
	PlayerID       string `json:"player_id"`
	Team           int    `json:"team"`
	Position       *int   `json:"position"`
	TichuCall      bool   `json:"tichu_call"`
	GrandTichuCall bool   `json:"grand_tichu_call"`
	TichuSuccess   bool   `json:"tichu_success"`
	BombCount      int    `json:"bomb_count"`
}

// Submission holds the raw inputs of one game together with the totals the
// submitting team claims.
type Submission struct {
	Participants    []Participant
	Team1Score      int
	Team2Score      int
	Team1TotalScore int
	Team2TotalScore int
	Team1DoubleWin  bool
	Team2DoubleWin  bool
}

// Derived is the result of an accepted submission.
type Derived struct {
	DoubleWin       bool
	WinningTeam     int // team that finished 1st and 2nd, 0 when there was no double win
	Team1Bonus      int
	Team2Bonus      int
	Team1TotalScore int
	Team2TotalScore int
}

// Validate checks the submission against the scoring rules in a fixed order and
// returns the derived totals. The first violated rule is reported.
func Validate(s Submission) (Derived, error) {
	ps := s.Participants
	if len(ps) != ParticipantsPerGame {
		return Derived{}, invalid("participants", "Exactly %d participants required", ParticipantsPerGame)
	}
	for i, p := range ps {
		if p.PlayerID == "" {
			return Derived{}, invalid("participants.player_id", "Player ID missing for participant %d", i+1)
		}
	}

	first, second := findPosition(ps, 1), findPosition(ps, 2)
	doubleWin := first != nil && second != nil && first.Team == second.Team
	winningTeam := 0
	if doubleWin {
		winningTeam = first.Team
	}

	if err := validatePositions(ps, doubleWin); err != nil {
		return Derived{}, err
	}
	if err := validateTeams(ps); err != nil {
		return Derived{}, err
	}
	if err := validateBaseScores(s, doubleWin); err != nil {
		return Derived{}, err
	}
	if err := validateDoubleWinFlags(s, winningTeam); err != nil {
		return Derived{}, err
	}
	for _, p := range ps {
		if err := validateCalls(p); err != nil {
			return Derived{}, err
		}
	}

	d := Derived{DoubleWin: doubleWin, WinningTeam: winningTeam}
	d.Team1Bonus, d.Team2Bonus = bonuses(ps, winningTeam)
	if doubleWin {
		d.Team1TotalScore = d.Team1Bonus
		d.Team2TotalScore = d.Team2Bonus
	} else {
		d.Team1TotalScore = s.Team1Score + d.Team1Bonus
		d.Team2TotalScore = s.Team2Score + d.Team2Bonus
	}

	if s.Team1TotalScore != d.Team1TotalScore {
		return Derived{}, invalid("team1_total_score", "Team 1 total score incorrect. Expected %d, got %d", d.Team1TotalScore, s.Team1TotalScore)
	}
	if s.Team2TotalScore != d.Team2TotalScore {
		return Derived{}, invalid("team2_total_score", "Team 2 total score incorrect. Expected %d, got %d", d.Team2TotalScore, s.Team2TotalScore)
	}
	return d, nil
}

func findPosition(ps []Participant, pos int) *Participant {
	for i := range ps {
		if ps[i].Position != nil && *ps[i].Position == pos {
			return &ps[i]
		}
	}
	return nil
}

func validatePositions(ps []Participant, doubleWin bool) error {
	seen := make(map[int]bool, len(ps))
	set := 0
	for _, p := range ps {
		if p.Position == nil {
			continue
		}
		set++
		seen[*p.Position] = true
	}

	if doubleWin {
		if set != 2 || !seen[1] || !seen[2] {
			return invalid("participants.position", "For double win games, only positions 1 and 2 should be set")
		}
		return nil
	}

	if set != ParticipantsPerGame || len(seen) != ParticipantsPerGame {
		return invalid("participants.position", "For normal games, positions must be unique and between 1 and 4")
	}
	for pos := 1; pos <= ParticipantsPerGame; pos++ {
		if !seen[pos] {
			return invalid("participants.position", "For normal games, positions must be unique and between 1 and 4")
		}
	}
	return nil
}

func validateTeams(ps []Participant) error {
	var team1, team2 int
	for _, p := range ps {
		switch p.Team {
		case 1:
			team1++
		case 2:
			team2++
		default:
			return invalid("participants.team", "Team must be 1 or 2, got %d", p.Team)
		}
	}
	if team1 != PlayersPerTeam || team2 != PlayersPerTeam {
		return invalid("participants.team", "Each team must have exactly %d players", PlayersPerTeam)
	}
	return nil
}

func validateBaseScores(s Submission, doubleWin bool) error {
	if doubleWin {
		if s.Team1Score != 0 || s.Team2Score != 0 {
			return invalid("team_score", "Base scores must be 0 for double win games")
		}
		return nil
	}
	if s.Team1Score+s.Team2Score != CardPointsPerGame {
		return invalid("team_score", "Base scores must sum to %d for non-double-win games", CardPointsPerGame)
	}
	return nil
}

func validateDoubleWinFlags(s Submission, winningTeam int) error {
	switch winningTeam {
	case 1:
		if !s.Team1DoubleWin || s.Team2DoubleWin {
			return invalid("double_win", "Double win flag does not match positions")
		}
	case 2:
		if !s.Team2DoubleWin || s.Team1DoubleWin {
			return invalid("double_win", "Double win flag does not match positions")
		}
	default:
		if s.Team1DoubleWin || s.Team2DoubleWin {
			return invalid("double_win", "No double win occurred but double win flag is set")
		}
	}
	return nil
}

func validateCalls(p Participant) error {
	if p.TichuCall && p.GrandTichuCall {
		return invalid("participants.tichu_call", "Player cannot call both small and grand tichu")
	}
	if p.TichuSuccess && !p.TichuCall && !p.GrandTichuCall {
		return invalid("participants.tichu_success", "Tichu success flag set but no tichu call made")
	}
	if p.TichuSuccess && (p.Position == nil || *p.Position != 1) {
		return invalid("participants.tichu_success", "Tichu can only be successful if player finished 1st")
	}
	if p.BombCount < 0 || p.BombCount > MaxBombsPerPlayer {
		return invalid("participants.bomb_count", "Bomb count must be between 0 and %d", MaxBombsPerPlayer)
	}
	return nil
}

func bonuses(ps []Participant, winningTeam int) (team1, team2 int) {
	add := func(team, v int) {
		if team == 1 {
			team1 += v
		} else {
			team2 += v
		}
	}
	for _, p := range ps {
		switch {
		case p.TichuCall && p.TichuSuccess:
			add(p.Team, TichuBonus)
		case p.TichuCall:
			add(p.Team, -TichuBonus)
		case p.GrandTichuCall && p.TichuSuccess:
			add(p.Team, GrandTichuBonus)
		case p.GrandTichuCall:
			add(p.Team, -GrandTichuBonus)
		}
	}
	if winningTeam != 0 {
		add(winningTeam, DoubleWinBonus)
	}
	return team1, team2
}
