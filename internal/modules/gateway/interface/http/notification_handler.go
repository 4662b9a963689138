package handler

import (
	jwtMiddleware "GrainHero/internal/middleware/jwt"
	"GrainHero/internal/modules/alert/application/dto/request"
	"GrainHero/internal/modules/alert/application/dto/respond"
	alertService "GrainHero/internal/modules/alert/application/service"
	"GrainHero/pkg/back"
	"GrainHero/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc alertService.NotificationService
}

func NewNotificationHandler(svc alertService.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	var req request.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.List(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), req)
	back.Result(c, data, err)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.UnreadCountRespond{Unread: n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.svc.MarkRead(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.Param("id"))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.UnreadCountRespond{Unread: n})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.UnreadCountRespond{Unread: n})
}
