package respond

import (
	"GrainHero/internal/modules/storage/domain/entity"
)

type SiloConditionsRespond struct {
	SiloId             string          `json:"silo_id"`
	Name               string          `json:"name"`
	Status             string          `json:"status"`
	CapacityKg         float64         `json:"capacity_kg"`
	CurrentOccupancyKg float64         `json:"current_occupancy_kg"`
	CurrentBatchId     string          `json:"current_batch_id,omitempty"`
	Snapshot           entity.Snapshot `json:"snapshot"`
	StaleChannels      []string        `json:"stale_channels"`
}
