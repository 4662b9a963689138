package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"GrainHero/internal/config"
	"GrainHero/pkg/util/myjwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.GetConfig().JwtConfig.Key = "test-signing-key"
	r := gin.New()
	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uuid":      c.GetString(CtxUserID),
			"tenant_id": c.GetString(CtxTenantID),
			"role":      c.GetString(CtxRole),
		})
	}
	r.GET("/h", Auth(), echo)
	r.GET("/q", QueryAuth(), echo)
	return r
}

func TestAuthSetsClaims(t *testing.T) {
	r := newRouter()
	token, err := myjwt.GenerateToken("u1", "alice", "t1", "manager")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/h", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uuid":"u1","tenant_id":"t1","role":"manager"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/h", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/h", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	noTenant, err := myjwt.GenerateToken("u1", "alice", "", "manager")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?token="+noTenant, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
