package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/visit-tracker/internal/auth"
	"github.com/frahmantamala/visit-tracker/internal/transport/middleware"
	"github.com/frahmantamala/visit-tracker/internal/transport/swagger"
	"github.com/frahmantamala/visit-tracker/internal/visit"
)

// RegisterAllRoutes mounts the full API. Session routes go through the
// JWT middleware; the import and daily-report integrations are guarded
// by the shared API key instead.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, visitHandler *visit.Handler, apiKey string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Machine-to-machine routes: API key, no session.
		r.Group(func(mr chi.Router) {
			mr.Use(middleware.APIKey(apiKey))
			mr.Post("/visits/import", visitHandler.ImportVisits)
			mr.Get("/visits/daily-report", visitHandler.DailyReport)
		})

		// Session-protected routes.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/auth/me", authHandler.Me)
			pr.Patch("/auth/change-password", authHandler.ChangePassword)

			pr.Route("/visits", func(vr chi.Router) {
				vr.Get("/", visitHandler.ListVisits)       // GET /visits
				vr.Patch("/{id}", visitHandler.UpdateVisit) // PATCH /visits/:id
			})
		})
	})
}
