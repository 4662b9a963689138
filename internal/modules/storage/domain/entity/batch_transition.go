package entity

import "time"

// ActorRiskEngine marks transitions the engine performed on its own.
const ActorRiskEngine = "risk-engine"

// BatchTransition is the append-only audit trail of status changes.
type BatchTransition struct {
	Id         string    `gorm:"column:id;primaryKey;type:char(20)"`
	TenantId   string    `gorm:"column:tenant_id;index;type:char(20);not null"`
	BatchId    string    `gorm:"column:batch_id;index;type:char(20);not null"`
	SiloId     string    `gorm:"column:silo_id;type:char(20);not null"`
	FromStatus string    `gorm:"column:from_status;type:varchar(20)"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(20);not null"`
	Actor      string    `gorm:"column:actor;type:varchar(64);not null"`
	Reason     string    `gorm:"column:reason;type:varchar(255)"`
	CreatedAt  time.Time `gorm:"column:created_at;precision:3;not null"`
}

func (BatchTransition) TableName() string {
	return "grain_batch_transition"
}
