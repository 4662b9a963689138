package repository

import (
	"context"
	"time"

	"GrainHero/internal/modules/alert/domain/entity"
)

const (
	FilterAll    = "all"
	FilterUnread = "unread"
	FilterRead   = "read"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Notification, error)
	// FindUnreadByKey returns the newest unread notification with dedupKey in
	// one of buckets whose last event is not before since.
	FindUnreadByKey(ctx context.Context, dedupKey string, buckets []time.Time, since time.Time) (*entity.Notification, error)
	// LatestUnreadForEntity returns the newest unread notification of the
	// entity in category, whatever its key.
	LatestUnreadForEntity(ctx context.Context, tenantID, entityType, entityID, category string) (*entity.Notification, error)
	Merge(ctx context.Context, id, message string, at, bucket time.Time) error
	List(ctx context.Context, tenantID, filter string, offset, limit int) ([]entity.Notification, int64, error)
	CountUnread(ctx context.Context, tenantID string) (int64, error)
	MarkRead(ctx context.Context, tenantID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, tenantID string, at time.Time) (int64, error)
	// PurgeReadBefore deletes read notifications created before cutoff.
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.NotificationDelivery) error
	// ClaimForPublish moves due rows to publishing and returns them. Rows
	// stuck in publishing longer than stuckAfter are claimed again.
	ClaimForPublish(ctx context.Context, now time.Time, stuckAfter time.Duration, limit int) ([]entity.NotificationDelivery, error)
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error
	MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error
	PurgePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertUnitOfWork writes a notification and its outbox row together.
type AlertUnitOfWork interface {
	Transaction(ctx context.Context, fn func(notifications NotificationRepository, deliveries DeliveryRepository) error) error
}
