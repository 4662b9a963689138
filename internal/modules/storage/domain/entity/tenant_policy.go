package entity

import "time"

// TenantPolicy overrides engine defaults per tenant. Zero values fall back to
// the configured defaults.
type TenantPolicy struct {
	TenantId               string    `gorm:"column:tenant_id;primaryKey;type:char(20)"`
	AutoHoldOnCritical     bool      `gorm:"column:auto_hold_on_critical;not null;default:false"`
	StalenessWindowSeconds int       `gorm:"column:staleness_window_seconds;not null;default:0"`
	DedupWindowSeconds     int       `gorm:"column:dedup_window_seconds;not null;default:0"`
	UpdatedAt              time.Time `gorm:"column:updated_at;precision:3;not null"`
}

func (TenantPolicy) TableName() string {
	return "tenant_policy"
}

// Policy is the resolved view of a tenant's policy with defaults applied.
type Policy struct {
	TenantId           string        `json:"tenant_id"`
	AutoHoldOnCritical bool          `json:"auto_hold_on_critical"`
	Staleness          time.Duration `json:"staleness"`
	DedupWindow        time.Duration `json:"dedup_window"`
}
