package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sri-narendra/Tasks/internal/domain"
	"github.com/sri-narendra/Tasks/pkg/health"
	"github.com/sri-narendra/Tasks/pkg/middleware"
)

// RouterConfig carries everything the router needs wired in. The token
// validator is injected as a function so the router does not depend on the
// JWT implementation.
type RouterConfig struct {
	Auth        *AuthHandler
	Board       *BoardHandler
	List        *ListHandler
	Task        *TaskHandler
	Attachment  *AttachmentHandler
	Admin       *AdminHandler
	Health      *health.Checker
	Logger      *slog.Logger
	Validate    middleware.TokenValidator
	CORS        middleware.CORSConfig
	RateRPS     int
	RateBurst   int
	ServiceName string
	Tracing     bool
}

// NewRouter assembles the HTTP routing table with the full middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Tracing {
		r.Use(middleware.Tracing(cfg.ServiceName))
	}
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RateLimit(cfg.RateRPS, cfg.RateBurst, cfg.Logger))

	r.Get("/health/live", cfg.Health.LiveHandler())
	r.Get("/health/ready", cfg.Health.ReadyHandler())
	r.Handle("/metrics", promhttp.Handler())

	authn := middleware.Auth(cfg.Validate)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.Post("/refresh", cfg.Auth.Refresh)
			r.Post("/logout", cfg.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/me", cfg.Auth.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/boards", func(r chi.Router) {
				r.Post("/", cfg.Board.Create)
				r.Get("/", cfg.Board.List)
				r.Get("/{id}", cfg.Board.Get)
				r.Get("/{id}/lists", cfg.Board.Lists)
				r.Put("/{id}", cfg.Board.Update)
				r.Delete("/{id}", cfg.Board.Delete)
			})

			r.Route("/lists", func(r chi.Router) {
				r.Post("/", cfg.List.Create)
				r.Get("/{id}", cfg.List.Get)
				r.Get("/{id}/tasks", cfg.List.Tasks)
				r.Put("/{id}", cfg.List.Update)
				r.Delete("/{id}", cfg.List.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", cfg.Task.Create)
				r.Get("/{id}", cfg.Task.Get)
				r.Get("/{id}/attachments", cfg.Task.Attachments)
				r.Put("/{id}", cfg.Task.Update)
				r.Delete("/{id}", cfg.Task.Delete)
			})

			r.Route("/attachments", func(r chi.Router) {
				r.Post("/", cfg.Attachment.Create)
				r.Delete("/{id}", cfg.Attachment.Delete)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/users", cfg.Admin.ListUsers)
			})
		})
	})

	return r
}
