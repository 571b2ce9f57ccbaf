package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algonet/backend/internal/auth"
	"github.com/algonet/backend/internal/health"
	"github.com/algonet/backend/internal/middleware"
	"github.com/algonet/backend/internal/service"
)

// NewRouter creates a chi router with all backend routes registered.
func NewRouter(
	userService *service.UserService,
	graphService *service.GraphService,
	algoService *service.AlgoService,
	tokens *auth.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("algonet"))

	// Health check endpoints
	r.Get("/health", healthHandler.LivenessHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(userService, logger)
	userHandler := NewUserHandler(userService, logger)
	graphHandler := NewGraphHandler(graphService, logger)
	algoHandler := NewAlgoHandler(algoService, logger)

	// Public auth endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)

			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))

			r.Get("/me", authHandler.Me)
			r.Get("/is-admin", authHandler.IsAdmin)
		})
	})

	// Public account endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/api/create-user", userHandler.Create)
		r.Put("/api/users/{id}/first-name", userHandler.UpdateFirstName)
		r.Put("/api/users/{id}/last-name", userHandler.UpdateLastName)
	})

	// Graph and script endpoints (auth required)
	r.Route("/api/graphs", func(r chi.Router) {
		r.Use(middleware.Auth(tokens))

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)

			r.Post("/save", graphHandler.Save)
			r.Put("/{id}", graphHandler.Update)
			r.Delete("/bulk", graphHandler.BulkDelete)
		})

		r.Get("/user", graphHandler.ListMine)
		r.Get("/all", graphHandler.ListAll)
		r.Get("/{id}", graphHandler.Get)
		r.Delete("/{id}", graphHandler.Delete)
	})

	// Multipart upload, no JSON content type enforcement here.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens))

		r.Post("/api/customAlgo", algoHandler.Run)
	})

	// Admin-only user management
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens))
		r.Use(userHandler.RequireAdmin)

		r.Get("/api/users", userHandler.List)
		r.Delete("/api/delete-user/{id}", userHandler.Delete)
		r.With(middleware.ContentTypeJSON).Put("/api/set/{id}/disable", userHandler.SetDisabled)
	})

	return r
}
