package handler

import (
	"net/http"

	jwtMiddleware "GrainHero/internal/middleware/jwt"
	"GrainHero/internal/modules/gateway/domain/access"
	"GrainHero/internal/modules/gateway/interface/middleware"
	storageService "GrainHero/internal/modules/storage/application/service"
	"GrainHero/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP surface.
type Handlers struct {
	Telemetry    *TelemetryHandler
	Silo         *SiloHandler
	Batch        *BatchHandler
	Notification *NotificationHandler
	Policy       *PolicyHandler
	Inbox        *InboxHandler
	Policies     storageService.PolicyService
}

// Register mounts the routes. auth verifies the bearer token; inboxAuth does
// the same for the websocket query token.
func Register(r gin.IRouter, h Handlers, auth, inboxAuth gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	need := func(perm string) gin.HandlerFunc {
		return middleware.Require(h.Policies, perm)
	}

	if h.Inbox != nil {
		r.GET("/wss", inboxAuth, need(access.NotificationsView), h.Inbox.Connect)
	}

	authed := r.Group("/")
	authed.Use(auth)
	authed.GET("/auth/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uuid":      c.GetString(jwtMiddleware.CtxUserID),
			"tenant_id": c.GetString(jwtMiddleware.CtxTenantID),
			"role":      c.GetString(jwtMiddleware.CtxRole),
		})
	})

	authed.POST("/telemetry/readings", need(access.SensorIngest), h.Telemetry.IngestReading)
	authed.GET("/silos/:id/conditions", need(access.SiloView), h.Silo.GetConditions)

	authed.POST("/batches/intake", need(access.BatchIntake), h.Batch.Intake)
	authed.POST("/batches/:id/transition", need(access.BatchTransition), h.Batch.Transition)
	authed.GET("/batches/:id/transitions", need(access.BatchView), h.Batch.Transitions)
	authed.GET("/batches/:id/risk", need(access.RiskView), h.Batch.CurrentRisk)
	authed.GET("/batches/:id/risk/history", need(access.RiskView), h.Batch.RiskHistory)
	authed.POST("/batches/:id/risk/recompute", need(access.RiskRecompute), h.Batch.Recompute)

	authed.GET("/notifications", need(access.NotificationsView), h.Notification.List)
	authed.GET("/notifications/unread-count", need(access.NotificationsView), h.Notification.UnreadCount)
	authed.POST("/notifications/read-all", need(access.NotificationsManage), h.Notification.MarkAllRead)
	authed.POST("/notifications/:id/read", need(access.NotificationsManage), h.Notification.MarkRead)

	authed.GET("/policy", need(access.SiloView), h.Policy.Get)
	authed.POST("/policy", need(access.PolicyManage), h.Policy.Update)
}

// DefaultAuth returns the production token middlewares.
func DefaultAuth() (gin.HandlerFunc, gin.HandlerFunc) {
	return jwtMiddleware.Auth(), jwtMiddleware.QueryAuth()
}
