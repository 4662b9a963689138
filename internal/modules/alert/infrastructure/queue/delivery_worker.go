package queue

import (
	"context"

	"GrainHero/pkg/mq"
	"GrainHero/pkg/ws"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

// DeliveryWorker consumes published deliveries and pushes them to the
// tenant's live inbox connections.
type DeliveryWorker struct {
	hub *ws.Hub
}

func NewDeliveryWorker(hub *ws.Hub) *DeliveryWorker {
	return &DeliveryWorker{hub: hub}
}

func (w *DeliveryWorker) Handle(ctx context.Context, msg mq.Message) error {
	tenantID := msg.Headers[mq.HeaderTenantID]
	if tenantID == "" {
		tenantID = string(msg.Key)
	}
	if tenantID == "" || len(msg.Value) == 0 {
		zlog.Warn("delivery without tenant dropped", zap.String("topic", msg.Topic))
		return nil
	}
	if !w.hub.Send(tenantID, msg.Value) {
		zlog.Debug("no live inbox for tenant", zap.String("tenant_id", tenantID),
			zap.String("notification_id", msg.Headers[mq.HeaderNotificationID]))
	}
	return nil
}

var _ mq.Handler = (*DeliveryWorker)(nil)
