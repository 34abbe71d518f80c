package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-account-service/internal/config"
	"go-account-service/internal/handler"
	"go-account-service/internal/middleware"
)

type Handlers struct {
	Account  *handler.AccountHandler
	Role     *handler.RoleHandler
	Position *handler.PositionHandler
	Audit    *handler.AuditHandler
	Health   *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	admin := []func(http.Handler) http.Handler{authMiddleware.RequireAuth, authMiddleware.RequireRoles(cfg.AdminRole)}

	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/account", func(account chi.Router) {
			account.Post("/register", h.Account.Register)
			account.Post("/token", h.Account.Token)
			account.Post("/login", h.Account.Login)
			account.With(authMiddleware.RequireAuth).Put("/", h.Account.Update)
			account.With(authMiddleware.RequireAuth).Delete("/", h.Account.Delete)
			account.With(authMiddleware.RequireAuth).Get("/me", h.Account.Me)
			account.With(admin...).Get("/users", h.Account.List)
			account.With(admin...).Post("/roles", h.Account.AssignRole)
			account.With(admin...).Delete("/roles", h.Account.RevokeRole)
		})

		api.Route("/roles", func(roles chi.Router) {
			roles.Get("/", h.Role.List)
			roles.With(admin...).Post("/", h.Role.Create)
			roles.With(admin...).Delete("/", h.Role.Delete)
		})

		api.Route("/positions", func(positions chi.Router) {
			positions.Get("/all", h.Position.List)
			positions.Get("/by-id", h.Position.Get)
			positions.With(admin...).Post("/", h.Position.Create)
			positions.With(admin...).Put("/", h.Position.Update)
			positions.With(admin...).Delete("/", h.Position.Delete)
		})

		api.With(admin...).Get("/audit", h.Audit.List)
	})

	return r
}
