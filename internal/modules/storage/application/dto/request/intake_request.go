package request

import "time"

type IntakeRequest struct {
	BatchCode  string    `json:"batch_code"`
	GrainType  string    `json:"grain_type"`
	QuantityKg float64   `json:"quantity_kg"`
	SiloId     string    `json:"silo_id"`
	IntakeDate time.Time `json:"intake_date"`
}
