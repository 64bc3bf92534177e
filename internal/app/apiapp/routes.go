package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	analyticssvc "github.com/ivanholub/giveline/backend/internal/services/analytics"
	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
	claimssvc "github.com/ivanholub/giveline/backend/internal/services/claims"
	evidencesvc "github.com/ivanholub/giveline/backend/internal/services/evidence"
	resolutionsvc "github.com/ivanholub/giveline/backend/internal/services/resolution"
	suspensionsvc "github.com/ivanholub/giveline/backend/internal/services/suspension"
	workflowsvc "github.com/ivanholub/giveline/backend/internal/services/workflow"
	"github.com/ivanholub/giveline/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager        *authsvc.JWTManager
	AuthService       *authsvc.Service
	WorkflowService   *workflowsvc.Service
	ClaimService      *claimssvc.Service
	ResolutionService *resolutionsvc.Service
	SuspensionService *suspensionsvc.Service
	AnalyticsService  *analyticssvc.Service
	EvidenceStorage   *evidencesvc.Storage
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	itemsHandler := handlers.NewItemsHandler(deps.WorkflowService, deps.ClaimService, deps.ResolutionService, deps.EvidenceStorage, deps.Logger)
	suspensionsHandler := handlers.NewSuspensionsHandler(deps.SuspensionService)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.AnalyticsService)

	r.Get("/healthz", healthHandler.Healthz)
	r.Post("/auth/login", authHandler.Login)

	r.Route("/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.JWTManager, deps.Logger))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemsHandler.List)
			r.Post("/", itemsHandler.Intake)
			r.Get("/{id}", itemsHandler.Get)
			r.Get("/{id}/history", itemsHandler.History)
			r.Post("/{id}/submit", itemsHandler.Submit)
			r.Post("/{id}/claim", itemsHandler.Claim)
			r.Post("/{id}/release", itemsHandler.Release)
			r.Post("/{id}/approve", itemsHandler.Approve)
			r.Post("/{id}/reject", itemsHandler.Reject)
			r.Post("/{id}/escalate", itemsHandler.Escalate)
			r.Post("/{id}/reassign", itemsHandler.Reassign)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(enums.RoleAdministrator))
				r.Delete("/{id}", itemsHandler.Purge)
			})
		})

		r.Route("/suspensions", func(r chi.Router) {
			r.Post("/{userID}/reactivate", suspensionsHandler.Reactivate)
			r.Post("/{userID}/reassign", suspensionsHandler.Reassign)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/leaderboard", analyticsHandler.Leaderboard)
			r.Get("/milestones", analyticsHandler.Milestones)
			r.Get("/queues", analyticsHandler.Queues)
		})
	})
}
