package handler

import (
	jwtMiddleware "GrainHero/internal/middleware/jwt"
	"GrainHero/internal/modules/storage/application/dto/request"
	storageService "GrainHero/internal/modules/storage/application/service"
	"GrainHero/pkg/back"
	"GrainHero/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	policies storageService.PolicyService
}

func NewPolicyHandler(policies storageService.PolicyService) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

func (h *PolicyHandler) Get(c *gin.Context) {
	p, err := h.policies.Resolve(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID))
	back.Result(c, p, err)
}

func (h *PolicyHandler) Update(c *gin.Context) {
	var req request.UpdatePolicyRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	p, err := h.policies.Update(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), req)
	back.Result(c, p, err)
}
