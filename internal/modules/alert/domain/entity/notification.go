package entity

import "time"

const (
	CategoryBatch     = "batch"
	CategorySpoilage  = "spoilage"
	CategoryDispatch  = "dispatch"
	CategoryPayment   = "payment"
	CategoryInsurance = "insurance"
	CategoryInvoice   = "invoice"
	CategorySystem    = "system"

	TypeInfo     = "info"
	TypeWarning  = "warning"
	TypeCritical = "critical"
	TypeSuccess  = "success"

	EntityBatch = "batch"
	EntitySilo  = "silo"
)

// Notification is a tenant inbox entry. Repeats of the same event inside the
// dedup window are merged into one row (Occurrences, LastEventAt).
type Notification struct {
	Id          string     `gorm:"column:id;primaryKey;type:char(20)"`
	TenantId    string     `gorm:"column:tenant_id;type:char(20);not null;index:idx_notification_tenant_read,priority:1;index:idx_notification_entity,priority:1"`
	BatchId     *string    `gorm:"column:batch_id;type:char(20)"`
	SiloId      *string    `gorm:"column:silo_id;type:char(20)"`
	EntityType  string     `gorm:"column:entity_type;type:varchar(20);not null;index:idx_notification_entity,priority:2"`
	EntityId    string     `gorm:"column:entity_id;type:char(20);not null;index:idx_notification_entity,priority:3"`
	Category    string     `gorm:"column:category;type:varchar(20);not null;index:idx_notification_entity,priority:4"`
	Type        string     `gorm:"column:type;type:varchar(20);not null"`
	Severity    int        `gorm:"column:severity_rank;not null;default:0"`
	Title       string     `gorm:"column:title;type:varchar(150);not null"`
	Message     string     `gorm:"column:message;type:varchar(1000);not null"`
	ActionUrl   string     `gorm:"column:action_url;type:varchar(255)"`
	DedupKey    string     `gorm:"column:dedup_key;type:varchar(191);not null;index:idx_notification_dedup,priority:1"`
	DedupBucket time.Time  `gorm:"column:dedup_bucket;precision:3;not null;index:idx_notification_dedup,priority:2"`
	Occurrences int        `gorm:"column:occurrences;not null;default:1"`
	LastEventAt time.Time  `gorm:"column:last_event_at;precision:3;not null"`
	IsRead      bool       `gorm:"column:is_read;not null;default:false;index:idx_notification_tenant_read,priority:2"`
	ReadAt      *time.Time `gorm:"column:read_at;precision:3"`
	CreatedAt   time.Time  `gorm:"column:created_at;precision:3;not null;index"`
}

func (Notification) TableName() string {
	return "notification"
}
