package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"GrainHero/internal/app"
	"GrainHero/internal/config"
	jwtMiddleware "GrainHero/internal/middleware/jwt"
	handler "GrainHero/internal/modules/gateway/interface/http"
	"GrainHero/internal/testkit"
	"GrainHero/pkg/back"
	"GrainHero/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// headerAuth stands in for the JWT middleware.
func headerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jwtMiddleware.CtxTenantID, c.GetHeader("X-Tenant"))
		c.Set(jwtMiddleware.CtxRole, c.GetHeader("X-Role"))
		c.Set(jwtMiddleware.CtxUserID, c.GetHeader("X-User"))
		c.Next()
	}
}

type server struct {
	r  *gin.Engine
	db *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testkit.OpenDB(t)
	testkit.SeedTenant(t, db, "t1")
	testkit.SeedTenant(t, db, "t2")
	testkit.SeedTenant(t, db, "t3")
	testkit.DeactivateTenant(t, db, "t3")
	testkit.SeedSilo(t, db, "t1", "s1", 10000)

	conf := &config.Config{EngineConfig: config.EngineConfig{
		ClockSkewHours:        24,
		StalenessMinutes:      15,
		DedupWindowHours:      6,
		MaxRaceRetries:        3,
		RequestTimeoutSeconds: 10,
	}}
	a := app.New(conf, db, app.Options{})
	r := gin.New()
	handler.Register(r, a.Handlers, headerAuth(), headerAuth())
	return &server{r: r, db: db}
}

func (s *server) do(t *testing.T, method, path, tenant, role string, body interface{}) (int, back.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant", tenant)
	req.Header.Set("X-Role", role)
	req.Header.Set("X-User", "u-"+role)
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	var resp back.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func intakeBody(code string, qty float64) gin.H {
	return gin.H{"batch_code": code, "grain_type": "Rice", "quantity_kg": qty, "silo_id": "s1"}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleGating(t *testing.T) {
	s := newServer(t)

	status, resp := s.do(t, http.MethodPost, "/batches/intake", "t1", "technician", intakeBody("R-1", 1000))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, xerr.Forbidden, resp.Code)

	status, _ = s.do(t, http.MethodPost, "/policy", "t1", "manager", gin.H{"auto_hold_on_critical": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/notifications", "t1", "", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/policy", "t1", "admin", gin.H{"auto_hold_on_critical": true})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/policy", "t1", "technician", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestInactiveTenantRejected(t *testing.T) {
	s := newServer(t)
	status, resp := s.do(t, http.MethodGet, "/notifications/unread-count", "t3", "admin", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, xerr.Forbidden, resp.Code)

	status, _ = s.do(t, http.MethodGet, "/notifications/unread-count", "nobody", "admin", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestIntakeTransitionFlow(t *testing.T) {
	s := newServer(t)

	status, resp := s.do(t, http.MethodPost, "/batches/intake", "t1", "manager", intakeBody("R-1", 4000))
	require.Equal(t, http.StatusOK, status, resp.Message)
	data := resp.Data.(map[string]interface{})
	batchID := data["id"].(string)
	assert.Equal(t, "stored", data["status"])

	status, resp = s.do(t, http.MethodPost, "/batches/intake", "t1", "manager", intakeBody("R-2", 8000))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, xerr.CapacityExceeded, resp.Code)

	status, _ = s.do(t, http.MethodGet, "/batches/"+batchID+"/transitions", "t2", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = s.do(t, http.MethodPost, "/batches/"+batchID+"/transition", "t1", "manager", gin.H{"status": "sold"})
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.Equal(t, "sold", resp.Data.(map[string]interface{})["to"])

	status, resp = s.do(t, http.MethodPost, "/batches/"+batchID+"/transition", "t1", "manager", gin.H{"status": "stored"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, xerr.InvalidTransition, resp.Code)

	status, resp = s.do(t, http.MethodPost, "/batches/"+batchID+"/transition", "t1", "manager", gin.H{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, xerr.BadRequest, resp.Code)

	status, resp = s.do(t, http.MethodGet, "/batches/"+batchID+"/transitions", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)
	items := resp.Data.([]interface{})
	require.Len(t, items, 2)
	var to []string
	for _, it := range items {
		item := it.(map[string]interface{})
		assert.Equal(t, batchID, item["batch_id"])
		assert.Equal(t, "s1", item["silo_id"])
		assert.NotEmpty(t, item["created_at"])
		assert.NotContains(t, item, "Id")
		assert.NotContains(t, item, "ToStatus")
		assert.NotContains(t, item, "tenant_id")
		to = append(to, item["to"].(string))
	}
	assert.ElementsMatch(t, []string{"stored", "sold"}, to)
}

func TestReadingRejectionStatus(t *testing.T) {
	s := newServer(t)
	status, resp := s.do(t, http.MethodPost, "/telemetry/readings", "t1", "technician", gin.H{
		"device_id":   "sensor-1",
		"silo_id":     "s1",
		"humidity":    150,
		"captured_at": time.Now().UTC(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, xerr.InvalidReading, resp.Code)
	assert.NotEmpty(t, resp.Reason)
}

func TestReadingToNotificationFlow(t *testing.T) {
	s := newServer(t)
	status, resp := s.do(t, http.MethodPost, "/batches/intake", "t1", "admin", intakeBody("R-1", 4000))
	require.Equal(t, http.StatusOK, status, resp.Message)
	batchID := resp.Data.(map[string]interface{})["id"].(string)

	status, resp = s.do(t, http.MethodPost, "/telemetry/readings", "t1", "technician", gin.H{
		"device_id":   "sensor-1",
		"silo_id":     "s1",
		"temperature": 30,
		"humidity":    85,
		"co2":         1200,
		"captured_at": time.Now().UTC().Add(-time.Minute),
	})
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["assessed"])

	status, resp = s.do(t, http.MethodGet, "/batches/"+batchID+"/risk", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "critical", resp.Data.(map[string]interface{})["risk_level"])

	status, _ = s.do(t, http.MethodGet, "/batches/"+batchID+"/risk", "t2", "technician", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = s.do(t, http.MethodGet, "/silos/s1/conditions", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "s1", resp.Data.(map[string]interface{})["silo_id"])

	status, resp = s.do(t, http.MethodGet, "/notifications/unread-count", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, resp.Data.(map[string]interface{})["unread"])

	status, resp = s.do(t, http.MethodGet, "/notifications?filter=unread", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)
	items := resp.Data.(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	noteID := items[0].(map[string]interface{})["id"].(string)

	status, _ = s.do(t, http.MethodPost, "/notifications/"+noteID+"/read", "t2", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = s.do(t, http.MethodPost, "/notifications/"+noteID+"/read", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodPost, "/notifications/read-all", "t1", "technician", nil)
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodGet, "/notifications?filter=bogus", "t1", "technician", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
