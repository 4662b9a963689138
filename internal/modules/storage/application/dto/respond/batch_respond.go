package respond

import (
	"time"

	"GrainHero/internal/modules/storage/domain/entity"
)

type BatchRespond struct {
	Id            string     `json:"id"`
	BatchCode     string     `json:"batch_code"`
	GrainType     string     `json:"grain_type"`
	QuantityKg    float64    `json:"quantity_kg"`
	IntakeDate    time.Time  `json:"intake_date"`
	SiloId        string     `json:"silo_id"`
	Status        string     `json:"status"`
	RiskScore     float64    `json:"risk_score"`
	RiskLevel     string     `json:"risk_level,omitempty"`
	SpoilageLabel string     `json:"spoilage_label,omitempty"`
	TerminalAt    *time.Time `json:"terminal_at,omitempty"`
}

func NewBatchRespond(b *entity.GrainBatch) *BatchRespond {
	if b == nil {
		return nil
	}
	return &BatchRespond{
		Id:            b.Id,
		BatchCode:     b.BatchCode,
		GrainType:     b.GrainType,
		QuantityKg:    b.QuantityKg,
		IntakeDate:    b.IntakeDate,
		SiloId:        b.SiloId,
		Status:        b.Status,
		RiskScore:     b.RiskScore,
		RiskLevel:     b.RiskLevel,
		SpoilageLabel: b.SpoilageLabel,
		TerminalAt:    b.TerminalAt,
	}
}

type TransitionRespond struct {
	Batch *BatchRespond `json:"batch"`
	From  string        `json:"from"`
	To    string        `json:"to"`
}

type TransitionItem struct {
	Id        string    `json:"id"`
	BatchId   string    `json:"batch_id"`
	SiloId    string    `json:"silo_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTransitionItems(rows []entity.BatchTransition) []TransitionItem {
	items := make([]TransitionItem, 0, len(rows))
	for _, t := range rows {
		items = append(items, TransitionItem{
			Id:        t.Id,
			BatchId:   t.BatchId,
			SiloId:    t.SiloId,
			From:      t.FromStatus,
			To:        t.ToStatus,
			Actor:     t.Actor,
			Reason:    t.Reason,
			CreatedAt: t.CreatedAt,
		})
	}
	return items
}
