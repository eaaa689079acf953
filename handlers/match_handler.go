package handlers

import (
	"net/http"

	"github.com/Dosada05/tichu-tournament/middleware"
	"github.com/Dosada05/tichu-tournament/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
	}
}

type confirmMatchInput struct {
	Unconfirm bool `json:"unconfirm"`
}

// Confirm godoc
// @Summary Confirm or unconfirm a match
// @Tags matches
// @Description The match completes once both teams have confirmed it with exactly 4 games recorded.
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param team-token header string true "Team access token"
// @Param body body confirmMatchInput false "Set unconfirm to withdraw a confirmation"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Match does not have 4 games"
// @Router /matches/{matchID}/confirm [post]
func (h *MatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input confirmMatchInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token := middleware.TeamTokenFromContext(r.Context())
	match, err := h.matchService.ConfirmMatch(r.Context(), token, matchID, input.Unconfirm)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitScores godoc
// @Summary Submit or correct the scores of a game
// @Tags games
// @Description Address a new game with match_id and game_number, or correct an existing one with game_id.
// @Accept json
// @Produce json
// @Param team-token header string true "Team access token"
// @Param body body services.SubmitScoresInput true "Scores, calls and finishing positions of the four players"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Match already confirmed or game number taken"
// @Failure 422 {object} map[string]string "Scoring rule violated"
// @Router /games/scores [post]
func (h *MatchHandler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitScoresInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token := middleware.TeamTokenFromContext(r.Context())
	result, err := h.matchService.SubmitScores(r.Context(), token, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success":           true,
		"game_id":           result.GameID,
		"team1_total_score": result.Team1TotalScore,
		"team2_total_score": result.Team2TotalScore,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
