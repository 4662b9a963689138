package entity

import "time"

// EnvironmentalReading is an accepted sample. Rows are never updated.
type EnvironmentalReading struct {
	Id          string    `gorm:"column:id;primaryKey;type:char(20)"`
	TenantId    string    `gorm:"column:tenant_id;index;type:char(20);not null"`
	SiloId      string    `gorm:"column:silo_id;type:char(20);not null;uniqueIndex:uk_reading_silo_device_time,priority:1"`
	DeviceId    string    `gorm:"column:device_id;type:varchar(64);not null;uniqueIndex:uk_reading_silo_device_time,priority:2"`
	Temperature *float64  `gorm:"column:temperature"`
	Humidity    *float64  `gorm:"column:humidity"`
	Co2         *float64  `gorm:"column:co2"`
	CapturedAt  time.Time `gorm:"column:captured_at;precision:3;not null;uniqueIndex:uk_reading_silo_device_time,priority:3"`
	ReceivedAt  time.Time `gorm:"column:received_at;precision:3;not null"`
}

func (EnvironmentalReading) TableName() string {
	return "environmental_reading"
}
