package routes

import (
	"net/http"

	_ "github.com/Dosada05/tichu-tournament/docs" // регистрирует OpenAPI-документ
	"github.com/Dosada05/tichu-tournament/handlers"
	"github.com/Dosada05/tichu-tournament/metrics"
	"github.com/Dosada05/tichu-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	TeamLimiter    *middleware.IPRateLimiter
	Metrics        *metrics.Metrics
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	teamHandler *handlers.TeamHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			middleware.TeamTokenHeader, handlers.IdempotencyKeyHeader,
		},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	router.Get("/healthz", healthHandler.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Post("/auth/organizer/login", authHandler.OrganizerLogin)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/standings", tournamentHandler.Standings)

		// Организатор
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(middleware.RoleOrganizer))

			r.Post("/start", tournamentHandler.Start)
			r.Post("/rounds/next", tournamentHandler.NextRound)
			r.Post("/finish", tournamentHandler.Finish)
		})
	})

	// Команды, по team-token
	router.Group(func(r chi.Router) {
		if opts.TeamLimiter != nil {
			r.Use(middleware.RateLimit(opts.TeamLimiter))
		}
		r.Use(middleware.RequireTeamToken)

		r.Get("/team/access", teamHandler.Access)
		r.Post("/matches/{matchID}/confirm", matchHandler.Confirm)
		r.Post("/games/scores", matchHandler.SubmitScores)
	})
}
