package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TeamTokenHeader carries a team's access token on team endpoints.
const TeamTokenHeader = "team-token"

// RequireTeamToken rejects requests without a team token and stores it in the context.
// Whether the token belongs to a team is decided by the services.
func RequireTeamToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(TeamTokenHeader))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "team token required")
			return
		}
		ctx := context.WithValue(r.Context(), teamTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
