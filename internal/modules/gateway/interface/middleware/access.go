package middleware

import (
	jwtMiddleware "GrainHero/internal/middleware/jwt"
	"GrainHero/internal/modules/gateway/domain/access"
	storageService "GrainHero/internal/modules/storage/application/service"
	"GrainHero/pkg/back"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Require rejects callers whose role lacks permission or whose tenant is
// unknown or inactive. It runs after the JWT middleware.
func Require(policies storageService.PolicyService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(jwtMiddleware.CtxRole)
		tenantID := c.GetString(jwtMiddleware.CtxTenantID)
		if !access.Allowed(role, permission) {
			zlog.Info("permission denied",
				zap.String("tenant_id", tenantID), zap.String("role", role), zap.String("permission", permission))
			back.Result(c, nil, xerr.ErrForbidden)
			c.Abort()
			return
		}
		if err := policies.RequireActiveTenant(c.Request.Context(), tenantID); err != nil {
			back.Result(c, nil, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
