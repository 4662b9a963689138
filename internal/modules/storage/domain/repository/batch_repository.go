package repository

import (
	"context"
	"time"

	"GrainHero/internal/modules/storage/domain/entity"
)

// RiskColumns are the denormalized risk fields kept on the batch row.
type RiskColumns struct {
	Score        float64
	Label        string
	Level        string
	AssessmentId string
}

type BatchRepository interface {
	Create(ctx context.Context, b *entity.GrainBatch) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.GrainBatch, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.GrainBatch, error)
	ListBySilo(ctx context.Context, tenantID, siloID string) ([]entity.GrainBatch, error)
	// UpdateStatus moves b to status when its version is still b.Version.
	UpdateStatus(ctx context.Context, b *entity.GrainBatch, status string, terminalAt *time.Time) (bool, error)
	// UpdateRisk writes the risk columns when the batch is non-terminal and
	// its version is still version.
	UpdateRisk(ctx context.Context, batchID string, version int64, risk RiskColumns) (bool, error)
	ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]entity.GrainBatch, error)
	SoftDelete(ctx context.Context, ids []string) (int64, error)
}
