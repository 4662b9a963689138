package entity

import "time"

const (
	SiloStatusActive      = "active"
	SiloStatusOffline     = "offline"
	SiloStatusMaintenance = "maintenance"
	SiloStatusError       = "error"
)

// Silo holds capacity bookkeeping and the current-conditions snapshot. The
// snapshot keeps one value and timestamp per channel so that staleness can
// be judged channel by channel.
type Silo struct {
	Id                 string  `gorm:"column:id;primaryKey;type:char(20)"`
	TenantId           string  `gorm:"column:tenant_id;index;type:char(20);not null"`
	Name               string  `gorm:"column:name;type:varchar(100);not null"`
	CapacityKg         float64 `gorm:"column:capacity_kg;not null"`
	CurrentOccupancyKg float64 `gorm:"column:current_occupancy_kg;not null;default:0"`
	Status             string  `gorm:"column:status;type:varchar(20);not null;default:active"`
	CurrentBatchId     *string `gorm:"column:current_batch_id;type:char(20)"`

	Temperature   *float64   `gorm:"column:temperature"`
	TemperatureAt *time.Time `gorm:"column:temperature_at;precision:3"`
	Humidity      *float64   `gorm:"column:humidity"`
	HumidityAt    *time.Time `gorm:"column:humidity_at;precision:3"`
	Co2           *float64   `gorm:"column:co2"`
	Co2At         *time.Time `gorm:"column:co2_at;precision:3"`
	SnapshotAt    *time.Time `gorm:"column:snapshot_at;precision:3"`

	Version   int64     `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;precision:3;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;precision:3;not null"`
}

func (Silo) TableName() string {
	return "silo"
}

// HasCurrentBatch reports whether the silo holds a stored batch.
func (s *Silo) HasCurrentBatch() bool {
	return s.CurrentBatchId != nil && *s.CurrentBatchId != ""
}

// AvailableKg is the remaining capacity, never negative.
func (s *Silo) AvailableKg() float64 {
	free := s.CapacityKg - s.CurrentOccupancyKg
	if free < 0 {
		return 0
	}
	return free
}

// Snapshot returns the per-channel view used by scoring.
func (s *Silo) Snapshot() Snapshot {
	return Snapshot{
		Temperature: Channel{Value: s.Temperature, At: s.TemperatureAt},
		Humidity:    Channel{Value: s.Humidity, At: s.HumidityAt},
		Co2:         Channel{Value: s.Co2, At: s.Co2At},
		At:          s.SnapshotAt,
	}
}

type Channel struct {
	Value *float64   `json:"value"`
	At    *time.Time `json:"captured_at"`
}

// Fresh reports whether the channel has a value captured within window of now.
func (c Channel) Fresh(now time.Time, window time.Duration) bool {
	if c.Value == nil || c.At == nil {
		return false
	}
	return now.Sub(*c.At) <= window
}

type Snapshot struct {
	Temperature Channel    `json:"temperature"`
	Humidity    Channel    `json:"humidity"`
	Co2         Channel    `json:"co2"`
	At          *time.Time `json:"snapshot_at"`
}

// Empty reports whether no channel was ever recorded.
func (s Snapshot) Empty() bool {
	return s.Temperature.Value == nil && s.Humidity.Value == nil && s.Co2.Value == nil
}
