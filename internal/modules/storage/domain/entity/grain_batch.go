package entity

import (
	"time"

	"gorm.io/gorm"
)

const (
	BatchStatusStored     = "stored"
	BatchStatusDispatched = "dispatched"
	BatchStatusSold       = "sold"
	BatchStatusDamaged    = "damaged"
	BatchStatusOnHold     = "on_hold"
)

// GrainBatch is one tracked quantity of grain. Version guards every update
// of status and risk columns.
type GrainBatch struct {
	Id                  string         `gorm:"column:id;primaryKey;type:char(20)"`
	TenantId            string         `gorm:"column:tenant_id;index;type:char(20);not null"`
	BatchCode           string         `gorm:"column:batch_code;type:varchar(64);not null"`
	GrainType           string         `gorm:"column:grain_type;type:varchar(32);not null"`
	QuantityKg          float64        `gorm:"column:quantity_kg;not null"`
	IntakeDate          time.Time      `gorm:"column:intake_date;precision:3;not null"`
	SiloId              string         `gorm:"column:silo_id;index;type:char(20);not null"`
	Status              string         `gorm:"column:status;type:varchar(20);index;not null"`
	RiskScore           float64        `gorm:"column:risk_score;not null;default:0"`
	SpoilageLabel       string         `gorm:"column:spoilage_label;type:varchar(20)"`
	RiskLevel           string         `gorm:"column:risk_level;type:varchar(20)"`
	CurrentAssessmentId *string        `gorm:"column:current_assessment_id;type:char(20)"`
	Version             int64          `gorm:"column:version;not null;default:0"`
	TerminalAt          *time.Time     `gorm:"column:terminal_at;precision:3;index"`
	CreatedAt           time.Time      `gorm:"column:created_at;precision:3;not null"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;precision:3;not null"`
	DeletedAt           gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (GrainBatch) TableName() string {
	return "grain_batch"
}
