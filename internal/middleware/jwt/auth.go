package jwt

import (
	"strings"

	"GrainHero/pkg/back"
	"GrainHero/pkg/util/myjwt"
	"GrainHero/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth.
const (
	CtxUserID   = "uuid"
	CtxUsername = "username"
	CtxTenantID = "tenant_id"
	CtxRole     = "role"
)

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := myjwt.ParseToken(tokenString)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// QueryAuth reads the token from ?token=, for websocket upgrades where
// browsers cannot set headers.
func QueryAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			back.Error(c, xerr.Unauthorized, "missing token")
			c.Abort()
			return
		}
		claims, err := myjwt.ParseToken(token)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *myjwt.CustomClaims) {
	c.Set(CtxUserID, claims.Uuid)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxTenantID, claims.TenantId)
	c.Set(CtxRole, claims.Role)
}
