package entity

import "time"

// Tenant is owned by the identity service; the engine only reads the active
// flag to refuse requests for suspended tenants.
type Tenant struct {
	Id        string    `gorm:"column:id;primaryKey;type:char(20)"`
	Name      string    `gorm:"column:name;type:varchar(100);not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;precision:3;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;precision:3;not null"`
}

func (Tenant) TableName() string {
	return "tenant"
}
