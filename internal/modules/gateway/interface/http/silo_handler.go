package handler

import (
	"time"

	jwtMiddleware "GrainHero/internal/middleware/jwt"
	engineService "GrainHero/internal/modules/engine/application/service"
	"GrainHero/internal/modules/storage/application/dto/respond"
	storageService "GrainHero/internal/modules/storage/application/service"
	"GrainHero/pkg/back"

	"github.com/gin-gonic/gin"
)

type SiloHandler struct {
	lifecycle storageService.LifecycleService
	policies  storageService.PolicyService
}

func NewSiloHandler(lifecycle storageService.LifecycleService, policies storageService.PolicyService) *SiloHandler {
	return &SiloHandler{lifecycle: lifecycle, policies: policies}
}

func (h *SiloHandler) GetConditions(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := c.GetString(jwtMiddleware.CtxTenantID)
	silo, err := h.lifecycle.GetSilo(ctx, tenantID, c.Param("id"))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	policy, err := h.policies.Resolve(ctx, tenantID)
	if err != nil {
		back.Result(c, nil, err)
		return
	}

	snap := silo.Snapshot()
	stale := engineService.StaleChannels(snap, time.Now().UTC(), policy.Staleness)
	if stale == nil {
		stale = []string{}
	}
	out := respond.SiloConditionsRespond{
		SiloId:             silo.Id,
		Name:               silo.Name,
		Status:             silo.Status,
		CapacityKg:         silo.CapacityKg,
		CurrentOccupancyKg: silo.CurrentOccupancyKg,
		Snapshot:           snap,
		StaleChannels:      stale,
	}
	if silo.HasCurrentBatch() {
		out.CurrentBatchId = *silo.CurrentBatchId
	}
	back.Success(c, out)
}
