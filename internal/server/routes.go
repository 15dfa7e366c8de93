package server

import (
	"context"
	"log"

	"rottencompany/internal/db"
	"rottencompany/internal/handlers"
	"rottencompany/internal/handlers/api"
	"rottencompany/internal/metrics"
	"rottencompany/internal/middleware"
	"rottencompany/internal/models"
	"rottencompany/internal/moderation"
	"rottencompany/internal/score"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, workflow *moderation.Service, flavorer *score.Flavorer, mode score.Mode) error {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database)

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(database, workflow, flavorer, mode, s.Cfg)
	moderationHandler := handlers.NewModerationHandler(workflow, s.Cfg)
	userHandler := handlers.NewUserHandler(database, s.Cfg)
	probeHandler := handlers.NewProbeHandler(database)

	evidenceAPI := api.NewEvidenceHandler(workflow)
	moderationAPI := api.NewModerationHandler(workflow)
	entityAPI := api.NewEntityHandler(database, flavorer, mode)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", metrics.Handler())

	// Auth routes
	if s.Cfg.OIDCIssuer != "" {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		log.Println("OIDC_ISSUER not set: sign-in is disabled, pages are read-only")
	}
	s.App.Get("/login", authMiddleware.OptionalAuth, pageHandler.Login)

	// Public pages
	s.App.Get("/", authMiddleware.OptionalAuth, pageHandler.Index)
	s.App.Get("/company/:slug", authMiddleware.OptionalAuth, pageHandler.Company)

	// Signed-in pages
	s.App.Get("/company/:slug/submit-evidence", authMiddleware.RequireAuth, pageHandler.SubmitEvidenceForm)
	s.App.Post("/company/:slug/submit-evidence", authMiddleware.RequireAuth, pageHandler.SubmitEvidence)
	s.App.Post("/company-requests", authMiddleware.RequireAuth, pageHandler.RequestCompany)

	// Moderation pages (moderators only)
	mod := s.App.Group("/moderation", authMiddleware.RequireAuth, authMiddleware.RequireModerator)
	mod.Get("/", moderationHandler.Index)
	mod.Post("/:target/:id/:action", moderationHandler.Act)

	// Admin routes (admin only)
	s.App.Get("/admin/users", authMiddleware.RequireAuth, userHandler.ListUsers)
	s.App.Post("/admin/users/:id/role", authMiddleware.RequireAuth, userHandler.UpdateUserRole)

	// JSON API
	apiGroup := s.App.Group("/api", authMiddleware.OptionalAuth)
	apiGroup.Get("/evidence-meta", evidenceAPI.Meta)
	apiGroup.Get("/evidence/by-id", evidenceAPI.ByID)
	apiGroup.Get("/moderation/gate", moderationAPI.Gate)
	apiGroup.Get("/moderation/gate-status", moderationAPI.Gate)
	apiGroup.Get("/search-entities", entityAPI.Search)
	apiGroup.Get("/entities/:slug", entityAPI.Get)

	apiGroup.Post("/evidence", authMiddleware.RequireAuth, evidenceAPI.Create)
	apiGroup.Post("/company-requests", authMiddleware.RequireAuth, evidenceAPI.CreateCompanyRequest)

	// Moderator-only API
	requireAuth, requireMod := authMiddleware.RequireAuth, authMiddleware.RequireModerator
	apiGroup.Post("/score/recalculate", requireAuth, requireMod, moderationAPI.Recalculate)
	apiGroup.Get("/moderation/queue", requireAuth, requireMod, moderationAPI.Queue)
	for _, action := range []string{models.ActionApprove, models.ActionReject, models.ActionAssign} {
		apiGroup.Post("/moderation/evidence/:id/"+action, requireAuth, requireMod, moderationAPI.Review(action, models.TargetEvidence))
		apiGroup.Post("/moderation/company-requests/:id/"+action, requireAuth, requireMod, moderationAPI.Review(action, models.TargetCompanyRequest))
	}

	return nil
}
