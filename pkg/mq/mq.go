package mq

import "context"

// Header keys set on notification deliveries.
const (
	HeaderTenantID       = "tenant_id"
	HeaderNotificationID = "notification_id"
	HeaderEventType      = "event_type"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// Handler processes one message. A nil error commits it; an error leaves it
// for redelivery.
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}
