package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/lifegate/church-mgmt/internal/auth"
	"github.com/lifegate/church-mgmt/internal/church"
	"github.com/lifegate/church-mgmt/internal/churchlead"
	"github.com/lifegate/church-mgmt/internal/hierarchy"
	"github.com/lifegate/church-mgmt/internal/member"
	"github.com/lifegate/church-mgmt/internal/transport/middleware"
	"github.com/lifegate/church-mgmt/internal/transport/swagger"
	"github.com/lifegate/church-mgmt/internal/user"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	hierarchyHandler *hierarchy.Handler,
	churchHandler *church.Handler,
	leadHandler *churchlead.Handler,
	memberHandler *member.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Current user
			pr.Get("/users/me", userHandler.GetCurrentUser)

			// Hierarchy level routes
			pr.Route("/levels", func(lr chi.Router) {
				lr.Get("/", hierarchyHandler.ListLevels)
				lr.Get("/{code}", hierarchyHandler.GetLevel)
				lr.Patch("/{code}/activate", hierarchyHandler.ActivateLevel)
				lr.Patch("/{code}/deactivate", hierarchyHandler.DeactivateLevel)
			})

			// Church routes
			pr.Route("/churches", func(cr chi.Router) {
				cr.Get("/", churchHandler.GetAllChurches)
				cr.Post("/{levelCode}", churchHandler.CreateChurch)
				cr.Get("/level/{levelCode}", churchHandler.GetChurchesByLevel)
				cr.Get("/{code}", churchHandler.GetChurch)
				cr.Patch("/{code}", churchHandler.UpdateChurch)
				cr.Patch("/{code}/approve", churchHandler.ApproveChurch)
				cr.Patch("/{code}/activate", churchHandler.ActivateChurch)
				cr.Patch("/{code}/deactivate", churchHandler.DeactivateChurch)

				// Lead mapping routes for one church
				cr.Route("/{code}/leads", func(clr chi.Router) {
					clr.Get("/", leadHandler.GetChurchLeads)
					clr.Get("/current", leadHandler.GetCurrentLead)
					clr.Post("/{leadCode}", leadHandler.MapChurchLead)
					clr.Patch("/unmap", leadHandler.UnmapChurchLead)
					clr.Patch("/{leadCode}/approve", leadHandler.ApproveChurchLead)
				})
			})

			// Reporting-line traversal routes
			pr.Route("/church-leads/{code}", func(tlr chi.Router) {
				tlr.Get("/churches", leadHandler.GetChurchesByLead)
				tlr.Get("/descendants", leadHandler.GetDescendants)
				tlr.Get("/branches", leadHandler.GetBranches)
			})

			// Member routes
			pr.Route("/members", func(mr chi.Router) {
				mr.Post("/", memberHandler.CreateMember)
				mr.Get("/", memberHandler.GetAllMembers)
				mr.Get("/branch/{branchCode}", memberHandler.GetMembersByBranch)
				mr.Get("/{code}", memberHandler.GetMember)
				mr.Patch("/{code}", memberHandler.UpdateMember)
				mr.Patch("/{code}/activate", memberHandler.ActivateMember)
				mr.Patch("/{code}/deactivate", memberHandler.DeactivateMember)
			})
		})
	})
}
