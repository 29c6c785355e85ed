// Package app provides application-level wiring and dependency injection
// for the querygate server.
package app

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"querygate/internal/api"
	"querygate/internal/config"
	"querygate/internal/db/repository"
	"querygate/internal/middleware"
	"querygate/internal/review"
	"querygate/internal/service"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the root logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers the API handler needs.
type Services struct {
	Requests    *service.ExecutionRequestService
	Connections *service.ConnectionService
	Users       *service.UserService
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Handler  *api.APIHandler
	Auth     *middleware.Authenticator
}

// New wires all repositories, services, and the API handler from the
// provided deps.
func New(deps Deps) *App {
	cfg := deps.Cfg

	// Repositories that mutate go through the single-writer pool so the
	// optimistic version check on event appends serializes correctly.
	requestRepo := repository.NewExecutionRequestRepo(deps.WriteDB)
	connRepo := repository.NewConnectionRepo(deps.WriteDB)
	userRepo := repository.NewUserRepo(deps.WriteDB)

	// Auth only reads users, so it can use the read pool.
	authUserRepo := repository.NewUserRepo(deps.ReadDB)

	policy := review.ExecutionPolicy{AuthorCanExecute: cfg.AuthorCanExecute}
	requestSvc := service.NewExecutionRequestService(
		requestRepo, connRepo, policy, deps.Logger.With("component", "execution-requests"),
	)
	connSvc := service.NewConnectionService(connRepo)
	userSvc := service.NewUserService(userRepo)

	handler := api.NewHandler(requestSvc, connSvc, userSvc, deps.Logger.With("component", "api"))
	auth := middleware.NewAuthenticator(cfg.JWTSecret, authUserRepo)

	return &App{
		Services: Services{
			Requests:    requestSvc,
			Connections: connSvc,
			Users:       userSvc,
		},
		Handler: handler,
		Auth:    auth,
	}
}

// Router builds the chi router: CORS, request IDs, rate limiting, a health
// probe, and the authenticated API under /v1.
func (a *App) Router(cfg *config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(a.Auth.Middleware)
		a.Handler.Routes(r)
	})

	return r
}
