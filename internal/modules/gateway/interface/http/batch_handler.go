package handler

import (
	"strconv"

	jwtMiddleware "GrainHero/internal/middleware/jwt"
	engineService "GrainHero/internal/modules/engine/application/service"
	riskRespond "GrainHero/internal/modules/risk/application/dto/respond"
	riskService "GrainHero/internal/modules/risk/application/service"
	"GrainHero/internal/modules/storage/application/dto/request"
	"GrainHero/internal/modules/storage/application/dto/respond"
	storageService "GrainHero/internal/modules/storage/application/service"
	"GrainHero/pkg/back"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BatchHandler struct {
	pipeline  engineService.PipelineService
	lifecycle storageService.LifecycleService
	scoring   riskService.ScoringService
}

func NewBatchHandler(pipeline engineService.PipelineService, lifecycle storageService.LifecycleService, scoring riskService.ScoringService) *BatchHandler {
	return &BatchHandler{pipeline: pipeline, lifecycle: lifecycle, scoring: scoring}
}

func (h *BatchHandler) Intake(c *gin.Context) {
	var req request.IntakeRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Warn("bind intake failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	b, err := h.pipeline.Intake(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.GetString(jwtMiddleware.CtxUserID), req)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.NewBatchRespond(b))
}

func (h *BatchHandler) Transition(c *gin.Context) {
	var req request.TransitionRequest
	if err := c.BindJSON(&req); err != nil || req.Status == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	tr, err := h.pipeline.Transition(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.GetString(jwtMiddleware.CtxUserID), c.Param("id"), req)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.TransitionRespond{
		Batch: respond.NewBatchRespond(tr.Batch),
		From:  tr.From,
		To:    tr.To,
	})
}

func (h *BatchHandler) CurrentRisk(c *gin.Context) {
	a, err := h.scoring.Current(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.Param("id"))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, riskRespond.NewAssessmentRespond(a))
}

func (h *BatchHandler) RiskHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	items, err := h.scoring.History(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.Param("id"), limit)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, riskRespond.NewAssessmentList(items))
}

func (h *BatchHandler) Recompute(c *gin.Context) {
	out, err := h.pipeline.Recompute(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.Param("id"))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, riskRespond.NewAssessmentRespond(out.Assessment))
}

func (h *BatchHandler) Transitions(c *gin.Context) {
	rows, err := h.lifecycle.History(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), c.Param("id"))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.NewTransitionItems(rows))
}
