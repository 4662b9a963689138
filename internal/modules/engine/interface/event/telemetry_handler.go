package event

import (
	"context"
	"encoding/json"

	"GrainHero/internal/modules/engine/application/service"
	"GrainHero/internal/modules/telemetry/application/dto/request"
	"GrainHero/pkg/mq"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

// TelemetryHandler feeds readings from the telemetry topic into the
// pipeline.
type TelemetryHandler struct {
	pipeline service.PipelineService
}

func NewTelemetryHandler(pipeline service.PipelineService) *TelemetryHandler {
	return &TelemetryHandler{pipeline: pipeline}
}

// Handle commits malformed and rejected readings after logging them. Only
// transient failures are returned for redelivery.
func (h *TelemetryHandler) Handle(ctx context.Context, msg mq.Message) error {
	var env request.ReadingEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		zlog.Warn("telemetry message is not a reading envelope",
			zap.String("topic", msg.Topic), zap.ByteString("key", msg.Key), zap.Error(err))
		return nil
	}
	if env.TenantId == "" {
		env.TenantId = msg.Headers[mq.HeaderTenantID]
	}
	if env.TenantId == "" {
		zlog.Warn("telemetry message without tenant", zap.String("silo_id", env.Reading.SiloId))
		return nil
	}

	out, err := h.pipeline.Ingest(ctx, env.TenantId, env.Reading)
	if err != nil {
		if service.IsRejection(err) {
			zlog.Info("telemetry reading rejected",
				zap.String("tenant_id", env.TenantId), zap.String("silo_id", env.Reading.SiloId),
				zap.String("device_id", env.Reading.DeviceId), zap.Error(err))
			return nil
		}
		return err
	}
	if out.Assessment != nil {
		zlog.Debug("telemetry reading assessed",
			zap.String("silo_id", env.Reading.SiloId), zap.String("level", out.Assessment.RiskLevel))
	}
	return nil
}
