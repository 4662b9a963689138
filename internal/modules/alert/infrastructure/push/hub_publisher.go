// Package push publishes deliveries straight to the websocket hub when no
// broker is configured.
package push

import (
	"context"

	"GrainHero/pkg/mq"
	"GrainHero/pkg/ws"
)

type hubPublisher struct {
	hub *ws.Hub
}

func NewHubPublisher(hub *ws.Hub) mq.Publisher {
	return &hubPublisher{hub: hub}
}

// Publish never fails: the notification is already in the tenant inbox and
// live push is best effort.
func (p *hubPublisher) Publish(ctx context.Context, msg mq.Message) (mq.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return mq.PublishResult{}, err
	}
	tenantID := msg.Headers[mq.HeaderTenantID]
	if tenantID == "" {
		tenantID = string(msg.Key)
	}
	p.hub.Send(tenantID, msg.Value)
	return mq.PublishResult{Partition: -1, Offset: -1}, nil
}

func (p *hubPublisher) Close() error {
	return nil
}
