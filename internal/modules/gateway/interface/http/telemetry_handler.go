package handler

import (
	jwtMiddleware "GrainHero/internal/middleware/jwt"
	engineService "GrainHero/internal/modules/engine/application/service"
	"GrainHero/internal/modules/telemetry/application/dto/request"
	"GrainHero/internal/modules/telemetry/application/dto/respond"
	"GrainHero/pkg/back"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TelemetryHandler struct {
	pipeline engineService.PipelineService
}

func NewTelemetryHandler(pipeline engineService.PipelineService) *TelemetryHandler {
	return &TelemetryHandler{pipeline: pipeline}
}

func (h *TelemetryHandler) IngestReading(c *gin.Context) {
	var req request.ReadingRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Warn("bind reading failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	out, err := h.pipeline.Ingest(c.Request.Context(), c.GetString(jwtMiddleware.CtxTenantID), req)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.IngestRespond{
		ReadingId:  out.Reading.Id,
		SiloId:     out.Reading.SiloId,
		CapturedAt: out.Reading.CapturedAt,
		Duplicate:  out.Duplicate,
		Advanced:   out.Advanced,
		Assessed:   out.Assessment != nil,
	})
}
