package handler

import (
	"net/http"

	jwtMiddleware "GrainHero/internal/middleware/jwt"
	"GrainHero/pkg/ws"
	"GrainHero/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// InboxHandler upgrades to a websocket that receives the tenant's new
// notifications.
type InboxHandler struct {
	hub *ws.Hub
}

func NewInboxHandler(hub *ws.Hub) *InboxHandler {
	return &InboxHandler{hub: hub}
}

func (h *InboxHandler) Connect(c *gin.Context) {
	tenantID := c.GetString(jwtMiddleware.CtxTenantID)
	userID := c.GetString(jwtMiddleware.CtxUserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Error("ws upgrade failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}

	client := ws.NewClient(tenantID, userID, conn)
	h.hub.Register(client)
	zlog.Info("inbox connected", zap.String("tenant_id", tenantID), zap.String("user_id", userID))

	go client.WritePump()
	go client.ReadPump(func() {
		h.hub.Unregister(client)
		zlog.Info("inbox disconnected", zap.String("tenant_id", tenantID), zap.String("user_id", userID))
	})
}
