package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/http/handlers"
	"github.com/ignatzorin/freelance-arbitration/internal/http/middleware"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	tokenManager *service.TokenManager,
	rateStore limiter.Store,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WSHandler,
	disputeHandler *handlers.DisputeHandler,
	reviewHandler *handlers.ReviewHandler,
	mediationHandler *handlers.MediationHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.GET("/ws", wsHandler.Handle)

	// Ограничение частоты только на изменяющих запросах
	writeLimit := middleware.RateLimitMiddleware(rateStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)
	staffOnly := middleware.RequireRoles(service.RoleModerator, service.RoleMediator, service.RoleAdmin)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		disputes := protected.Group("/disputes")
		disputes.POST("", writeLimit, disputeHandler.CreateDispute)
		disputes.GET("", disputeHandler.ListDisputes)
		disputes.GET("/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
		disputes.POST("/:id/responses", middleware.UUIDValidator("id"), writeLimit, disputeHandler.RespondToDispute)
		disputes.POST("/:id/evidence", middleware.UUIDValidator("id"), writeLimit, disputeHandler.AddEvidence)
		disputes.POST("/:id/uploads", middleware.UUIDValidator("id"), writeLimit, disputeHandler.UploadEvidence)
		disputes.POST("/:id/evidence/:evidenceId/verify", middleware.UUIDValidator("id", "evidenceId"), staffOnly, disputeHandler.VerifyEvidence)
		disputes.POST("/:id/escalate", middleware.UUIDValidator("id"), writeLimit, disputeHandler.EscalateDispute)
		disputes.POST("/:id/resolve", middleware.UUIDValidator("id"), staffOnly, disputeHandler.ResolveDispute)
		disputes.POST("/:id/accept", middleware.UUIDValidator("id"), writeLimit, disputeHandler.AcceptResolution)
		disputes.POST("/:id/close", middleware.UUIDValidator("id"), writeLimit, disputeHandler.CloseDispute)

		reviews := protected.Group("/reviews")
		reviews.POST("", writeLimit, reviewHandler.SubmitReview)
		reviews.GET("", reviewHandler.ListReviews)
		reviews.GET("/:id", middleware.UUIDValidator("id"), reviewHandler.GetReview)
		reviews.POST("/:id/flags", middleware.UUIDValidator("id"), writeLimit, reviewHandler.FlagReview)
		reviews.POST("/:id/moderate", middleware.UUIDValidator("id"), staffOnly, reviewHandler.ModerateReview)
		reviews.POST("/:id/response", middleware.UUIDValidator("id"), writeLimit, reviewHandler.RespondToReview)
		reviews.POST("/:id/helpful", middleware.UUIDValidator("id"), writeLimit, reviewHandler.MarkHelpful)

		protected.GET("/moderation/queue", staffOnly, reviewHandler.ModerationQueue)

		sessions := protected.Group("/mediation/sessions")
		sessions.POST("", staffOnly, mediationHandler.ScheduleSession)
		sessions.GET("", mediationHandler.ListSessions)
		sessions.GET("/:id", middleware.UUIDValidator("id"), mediationHandler.GetSession)
		sessions.POST("/:id/start", middleware.UUIDValidator("id"), staffOnly, mediationHandler.StartSession)
		sessions.POST("/:id/complete", middleware.UUIDValidator("id"), staffOnly, mediationHandler.CompleteSession)
		sessions.POST("/:id/cancel", middleware.UUIDValidator("id"), staffOnly, mediationHandler.CancelSession)

		analytics := protected.Group("/analytics", staffOnly)
		analytics.GET("/disputes", analyticsHandler.Disputes)
		analytics.GET("/reviews", analyticsHandler.Reviews)
	}

	return r
}
