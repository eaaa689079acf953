package handlers

import (
	"net/http"

	"github.com/Dosada05/tichu-tournament/middleware"
	"github.com/Dosada05/tichu-tournament/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// Access godoc
// @Summary Resolve a team token
// @Tags teams
// @Produce json
// @Param team-token header string true "Team access token"
// @Success 200 {object} map[string]interface{} "Team with its tournament"
// @Failure 401 {object} map[string]string
// @Router /team/access [get]
func (h *TeamHandler) Access(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.TeamAccess(r.Context(), middleware.TeamTokenFromContext(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
