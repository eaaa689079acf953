package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/tichu-tournament/middleware"
	"github.com/Dosada05/tichu-tournament/services"
)

const organizerTokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
	}
}

type organizerLoginInput struct {
	Password string `json:"password"`
}

// OrganizerLogin godoc
// @Summary Organizer login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body organizerLoginInput true "Organizer password"
// @Success 200 {object} map[string]interface{} "JWT valid for 24h"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/organizer/login [post]
func (h *AuthHandler) OrganizerLogin(w http.ResponseWriter, r *http.Request) {
	var input organizerLoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Password == "" {
		badRequestResponse(w, r, errors.New("password is required"))
		return
	}

	if err := h.authService.LoginOrganizer(r.Context(), input.Password); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tokenString, err := middleware.IssueToken(h.jwtSecret, middleware.RoleOrganizer, middleware.RoleOrganizer, organizerTokenTTL)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"token":      tokenString,
		"expires_in": int(organizerTokenTTL.Seconds()),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
