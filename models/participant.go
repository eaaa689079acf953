package models

import "github.com/google/uuid"

// GameParticipant is one player's line in a game: finishing position, calls and bombs.
type GameParticipant struct {
	GameID         uuid.UUID `json:"game_id" db:"game_id"`
	PlayerID       string    `json:"player_id" db:"player_id"`
	Team           TeamSide  `json:"team" db:"team"`
	Position       *int      `json:"position" db:"position"` // nil for the losing pair of a double win
	TichuCall      bool      `json:"tichu_call" db:"tichu_call"`
	GrandTichuCall bool      `json:"grand_tichu_call" db:"grand_tichu_call"`
	TichuSuccess   bool      `json:"tichu_success" db:"tichu_success"`
	BombCount      int       `json:"bomb_count" db:"bomb_count"`
}
