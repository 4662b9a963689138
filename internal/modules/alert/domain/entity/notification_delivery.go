package entity

import (
	"time"

	"gorm.io/datatypes"
)

const ChannelInApp = "in_app"

// Publish status of an outbox row.
const (
	PublishStatusPending    int8 = 0
	PublishStatusPublishing int8 = 1
	PublishStatusPublished  int8 = 2
	PublishStatusFailed     int8 = 3
)

// NotificationDelivery is the outbox row written with each new notification.
// The relay publishes it at least once.
type NotificationDelivery struct {
	Id             int64          `gorm:"column:id;primaryKey;autoIncrement"`
	NotificationId string         `gorm:"column:notification_id;type:char(20);not null;index"`
	TenantId       string         `gorm:"column:tenant_id;type:char(20);not null"`
	Channel        string         `gorm:"column:channel;type:varchar(20);not null"`
	Payload        datatypes.JSON `gorm:"column:payload"`
	PublishStatus  int8           `gorm:"column:publish_status;not null;default:0;index:idx_delivery_due,priority:1"`
	RetryCount     int            `gorm:"column:retry_count;not null;default:0"`
	NextRetryAt    *time.Time     `gorm:"column:next_retry_at;precision:3;index:idx_delivery_due,priority:2"`
	LastError      string         `gorm:"column:last_error;type:varchar(255)"`
	PublishedAt    *time.Time     `gorm:"column:published_at;precision:3"`
	CreatedAt      time.Time      `gorm:"column:created_at;precision:3;not null"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;precision:3;not null"`
}

func (NotificationDelivery) TableName() string {
	return "notification_delivery"
}
