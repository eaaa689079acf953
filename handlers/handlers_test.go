package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/tichu-tournament/middleware"
	"github.com/Dosada05/tichu-tournament/models"
	"github.com/Dosada05/tichu-tournament/scoring"
	"github.com/Dosada05/tichu-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------------------
// Fake services
// ------------------------

type FakeTournamentService struct {
	StartTournamentFunc  func(ctx context.Context, id uuid.UUID) (*services.RoundResult, error)
	StartNextRoundFunc   func(ctx context.Context, id uuid.UUID, key string) (*services.RoundResult, error)
	FinishTournamentFunc func(ctx context.Context, id uuid.UUID) (*services.FinishResult, error)
	GetStandingsFunc     func(ctx context.Context, id uuid.UUID) ([]models.TournamentStanding, error)
}

var _ services.TournamentService = (*FakeTournamentService)(nil)

func (f *FakeTournamentService) StartTournament(ctx context.Context, id uuid.UUID) (*services.RoundResult, error) {
	return f.StartTournamentFunc(ctx, id)
}

func (f *FakeTournamentService) StartNextRound(ctx context.Context, id uuid.UUID, key string) (*services.RoundResult, error) {
	return f.StartNextRoundFunc(ctx, id, key)
}

func (f *FakeTournamentService) FinishTournament(ctx context.Context, id uuid.UUID) (*services.FinishResult, error) {
	return f.FinishTournamentFunc(ctx, id)
}

func (f *FakeTournamentService) GetStandings(ctx context.Context, id uuid.UUID) ([]models.TournamentStanding, error) {
	return f.GetStandingsFunc(ctx, id)
}

type FakeMatchService struct {
	ConfirmMatchFunc func(ctx context.Context, token string, matchID uuid.UUID, unconfirm bool) (*models.Match, error)
	SubmitScoresFunc func(ctx context.Context, token string, input services.SubmitScoresInput) (*services.SubmitScoresResult, error)
}

var _ services.MatchService = (*FakeMatchService)(nil)

func (f *FakeMatchService) ConfirmMatch(ctx context.Context, token string, matchID uuid.UUID, unconfirm bool) (*models.Match, error) {
	return f.ConfirmMatchFunc(ctx, token, matchID, unconfirm)
}

func (f *FakeMatchService) SubmitScores(ctx context.Context, token string, input services.SubmitScoresInput) (*services.SubmitScoresResult, error) {
	return f.SubmitScoresFunc(ctx, token, input)
}

type FakeTeamService struct {
	TeamAccessFunc func(ctx context.Context, token string) (*models.Team, error)
}

var _ services.TeamService = (*FakeTeamService)(nil)

func (f *FakeTeamService) TeamAccess(ctx context.Context, token string) (*models.Team, error) {
	return f.TeamAccessFunc(ctx, token)
}

type FakeAuthService struct {
	LoginOrganizerFunc func(ctx context.Context, password string) error
}

var _ services.AuthService = (*FakeAuthService)(nil)

func (f *FakeAuthService) LoginOrganizer(ctx context.Context, password string) error {
	return f.LoginOrganizerFunc(ctx, password)
}

type pingerFunc func(ctx context.Context) error

func (p pingerFunc) PingContext(ctx context.Context) error { return p(ctx) }

// ------------------------
// Helpers
// ------------------------

func serve(t *testing.T, pattern, method, target string, h http.HandlerFunc, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.With(middleware.RequireTeamToken).MethodFunc(method, "/team-scoped"+pattern, h)
	router.MethodFunc(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ------------------------
// Tournament handler
// ------------------------

func TestTournamentHandler_Start(t *testing.T) {
	id := uuid.New()
	svc := &FakeTournamentService{StartTournamentFunc: func(_ context.Context, got uuid.UUID) (*services.RoundResult, error) {
		if got != id {
			return nil, services.ErrTournamentNotFound
		}
		return &services.RoundResult{
			Round:           &models.Round{ID: uuid.New(), TournamentID: id, RoundNumber: 1, Status: models.RoundStatusActive},
			Matches:         []models.Match{},
			UnpairedTeamIDs: []uuid.UUID{},
		}, nil
	}}
	h := NewTournamentHandler(svc)

	rec := serve(t, "/tournaments/{tournamentID}/start", http.MethodPost, "/tournaments/"+id.String()+"/start", h.Start, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["round"].(map[string]interface{})["round_number"])
	assert.Equal(t, []interface{}{}, body["unpaired_team_ids"])

	rec = serve(t, "/tournaments/{tournamentID}/start", http.MethodPost, "/tournaments/"+uuid.NewString()+"/start", h.Start, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "tournament not found", decode(t, rec)["error"])

	rec = serve(t, "/tournaments/{tournamentID}/start", http.MethodPost, "/tournaments/42/start", h.Start, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTournamentHandler_NextRound(t *testing.T) {
	var gotKey string
	replayed := false
	svc := &FakeTournamentService{StartNextRoundFunc: func(_ context.Context, _ uuid.UUID, key string) (*services.RoundResult, error) {
		gotKey = key
		return &services.RoundResult{Round: &models.Round{RoundNumber: 2}, Replayed: replayed}, nil
	}}
	h := NewTournamentHandler(svc)
	target := "/tournaments/" + uuid.NewString() + "/rounds/next"
	pattern := "/tournaments/{tournamentID}/rounds/next"

	rec := serve(t, pattern, http.MethodPost, target, h.NextRound, "", map[string]string{IdempotencyKeyHeader: "abc"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "abc", gotKey)

	replayed = true
	rec = serve(t, pattern, http.MethodPost, target, h.NextRound, "", map[string]string{IdempotencyKeyHeader: "abc"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, pattern, http.MethodPost, target, h.NextRound, "", map[string]string{IdempotencyKeyHeader: strings.Repeat("k", 129)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.StartNextRoundFunc = func(context.Context, uuid.UUID, string) (*services.RoundResult, error) {
		return nil, services.ErrRoundIncomplete
	}
	rec = serve(t, pattern, http.MethodPost, target, h.NextRound, "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "all matches in the current round must be completed", decode(t, rec)["error"])
}

func TestTournamentHandler_FinishAndStandings(t *testing.T) {
	svc := &FakeTournamentService{
		FinishTournamentFunc: func(context.Context, uuid.UUID) (*services.FinishResult, error) {
			return &services.FinishResult{
				Tournament:     &models.Tournament{Status: models.StatusCompleted},
				FinalStandings: []models.TournamentStanding{{TeamName: "Dragons", TotalPoints: 900, Rank: 1}},
				StandingsURL:   "https://cdn.example.com/s.json",
			}, nil
		},
		GetStandingsFunc: func(context.Context, uuid.UUID) ([]models.TournamentStanding, error) {
			return nil, errors.New("unexpected")
		},
	}
	h := NewTournamentHandler(svc)
	id := uuid.NewString()

	rec := serve(t, "/tournaments/{tournamentID}/finish", http.MethodPost, "/tournaments/"+id+"/finish", h.Finish, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "https://cdn.example.com/s.json", body["standings_url"])
	standings := body["final_standings"].([]interface{})
	require.Len(t, standings, 1)
	assert.Equal(t, "Dragons", standings[0].(map[string]interface{})["team_name"])

	rec = serve(t, "/tournaments/{tournamentID}/standings", http.MethodGet, "/tournaments/"+id+"/standings", h.Standings, "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "the server encountered a problem and could not process your request", decode(t, rec)["error"])
}

// ------------------------
// Match handler
// ------------------------

func TestMatchHandler_SubmitScores(t *testing.T) {
	var got services.SubmitScoresInput
	var gotToken string
	gameID := uuid.New()
	svc := &FakeMatchService{SubmitScoresFunc: func(_ context.Context, token string, in services.SubmitScoresInput) (*services.SubmitScoresResult, error) {
		gotToken, got = token, in
		return &services.SubmitScoresResult{GameID: gameID, Team1TotalScore: 160, Team2TotalScore: 40}, nil
	}}
	h := NewMatchHandler(svc)
	matchID := uuid.NewString()
	payload := fmt.Sprintf(`{
		"match_id": %q, "game_number": 2,
		"team1_score": 60, "team2_score": 40, "team1_total_score": 160, "team2_total_score": 40,
		"participants": [
			{"player_id": "anna", "team": 1, "position": 1, "tichu_call": true, "tichu_success": true},
			{"player_id": "ben", "team": 1, "position": 3},
			{"player_id": "carl", "team": 2, "position": 2, "bomb_count": 1},
			{"player_id": "dora", "team": 2, "position": 4}
		]
	}`, matchID)

	rec := serve(t, "/games/scores", http.MethodPost, "/team-scoped/games/scores", h.SubmitScores, payload,
		map[string]string{middleware.TeamTokenHeader: "tok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, gameID.String(), body["game_id"])
	assert.Equal(t, float64(160), body["team1_total_score"])

	assert.Equal(t, "tok", gotToken)
	require.NotNil(t, got.MatchID)
	assert.Equal(t, matchID, got.MatchID.String())
	assert.Equal(t, 2, *got.GameNumber)
	require.Len(t, got.Participants, 4)
	assert.True(t, got.Participants[0].TichuSuccess)
	assert.Nil(t, got.GameID)
}

func TestMatchHandler_SubmitScores_Errors(t *testing.T) {
	svc := &FakeMatchService{}
	h := NewMatchHandler(svc)
	headers := map[string]string{middleware.TeamTokenHeader: "tok"}

	rec := serve(t, "/games/scores", http.MethodPost, "/team-scoped/games/scores", h.SubmitScores, `{"winner": 1}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `body contains unknown key "winner"`, decode(t, rec)["error"])

	rec = serve(t, "/games/scores", http.MethodPost, "/team-scoped/games/scores", h.SubmitScores, `{"team1_score": "sixty"}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, "/games/scores", http.MethodPost, "/team-scoped/games/scores", h.SubmitScores, `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "team token is required before the handler runs")

	svc.SubmitScoresFunc = func(context.Context, string, services.SubmitScoresInput) (*services.SubmitScoresResult, error) {
		verr := &scoring.ValidationError{Field: "team1_total_score", Message: "Team 1 total score incorrect. Expected 60, got 70"}
		return nil, fmt.Errorf("%w: %w", services.ErrValidationFailed, verr)
	}
	rec = serve(t, "/games/scores", http.MethodPost, "/team-scoped/games/scores", h.SubmitScores, `{}`, headers)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "team1_total_score", body["field"])
	assert.Contains(t, body["error"], "Expected 60, got 70")

	svc.SubmitScoresFunc = func(context.Context, string, services.SubmitScoresInput) (*services.SubmitScoresResult, error) {
		return nil, services.ErrMatchAlreadyConfirmed
	}
	rec = serve(t, "/games/scores", http.MethodPost, "/team-scoped/games/scores", h.SubmitScores, `{}`, headers)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMatchHandler_Confirm(t *testing.T) {
	var gotUnconfirm bool
	svc := &FakeMatchService{ConfirmMatchFunc: func(_ context.Context, token string, id uuid.UUID, unconfirm bool) (*models.Match, error) {
		if token != "tok" {
			return nil, services.ErrNotMatchParticipant
		}
		gotUnconfirm = unconfirm
		return &models.Match{ID: id, Status: models.MatchStatusPlaying}, nil
	}}
	h := NewMatchHandler(svc)
	pattern := "/matches/{matchID}/confirm"
	target := "/team-scoped/matches/" + uuid.NewString() + "/confirm"

	rec := serve(t, pattern, http.MethodPost, target, h.Confirm, "", map[string]string{middleware.TeamTokenHeader: "tok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.False(t, gotUnconfirm)

	rec = serve(t, pattern, http.MethodPost, target, h.Confirm, `{"unconfirm": true}`, map[string]string{middleware.TeamTokenHeader: "tok"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotUnconfirm)

	rec = serve(t, pattern, http.MethodPost, target, h.Confirm, "", map[string]string{middleware.TeamTokenHeader: "other"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no access to this match", decode(t, rec)["error"])
}

// ------------------------
// Team, auth and health handlers
// ------------------------

func TestTeamHandler_Access(t *testing.T) {
	tournamentID := uuid.New()
	svc := &FakeTeamService{TeamAccessFunc: func(_ context.Context, token string) (*models.Team, error) {
		if token != "tok" {
			return nil, services.ErrInvalidTeamToken
		}
		return &models.Team{Name: "Dragons", AccessToken: "tok", Tournament: &models.Tournament{ID: tournamentID}}, nil
	}}
	h := NewTeamHandler(svc)

	rec := serve(t, "/team/access", http.MethodGet, "/team-scoped/team/access", h.Access, "", map[string]string{middleware.TeamTokenHeader: "tok"})
	require.Equal(t, http.StatusOK, rec.Code)
	team := decode(t, rec)["team"].(map[string]interface{})
	assert.Equal(t, "Dragons", team["team_name"])
	assert.NotContains(t, team, "access_token")
	assert.Equal(t, tournamentID.String(), team["tournament"].(map[string]interface{})["id"])

	rec = serve(t, "/team/access", http.MethodGet, "/team-scoped/team/access", h.Access, "", map[string]string{middleware.TeamTokenHeader: "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_OrganizerLogin(t *testing.T) {
	secret := "jwt-secret"
	svc := &FakeAuthService{LoginOrganizerFunc: func(_ context.Context, password string) error {
		if password != "letmein" {
			return services.ErrInvalidCredentials
		}
		return nil
	}}
	h := NewAuthHandler(svc, secret)

	rec := serve(t, "/auth/organizer/login", http.MethodPost, "/auth/organizer/login", h.OrganizerLogin, `{"password":"letmein"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode(t, rec)["token"].(string)

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte(secret), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, middleware.RoleOrganizer, claims["role"])

	rec = serve(t, "/auth/organizer/login", http.MethodPost, "/auth/organizer/login", h.OrganizerLogin, `{"password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, "/auth/organizer/login", http.MethodPost, "/auth/organizer/login", h.OrganizerLogin, `{"password":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, "/auth/organizer/login", http.MethodPost, "/auth/organizer/login", h.OrganizerLogin, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body must not be empty", decode(t, rec)["error"])
}

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	rec := serve(t, "/healthz", http.MethodGet, "/healthz", healthy.Health, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("refused") }))
	rec = serve(t, "/healthz", http.MethodGet, "/healthz", down.Health, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
