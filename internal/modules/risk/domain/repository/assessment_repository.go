package repository

import (
	"context"

	"GrainHero/internal/modules/risk/domain/entity"
	storageRepository "GrainHero/internal/modules/storage/domain/repository"
)

type AssessmentRepository interface {
	Insert(ctx context.Context, a *entity.RiskAssessment) error
	GetCurrent(ctx context.Context, tenantID, batchID string) (*entity.RiskAssessment, error)
	// ListHistory returns assessments newest first, the current one included.
	ListHistory(ctx context.Context, tenantID, batchID string, limit int) ([]entity.RiskAssessment, error)
	// ClearCurrent marks every current assessment of the batch historical.
	ClearCurrent(ctx context.Context, batchID string) (int64, error)
	CountCurrent(ctx context.Context, batchID string) (int64, error)
}

// RiskUnitOfWork binds the assessment write and the batch risk columns to
// one transaction.
type RiskUnitOfWork interface {
	Transaction(ctx context.Context, fn func(assessments AssessmentRepository, batches storageRepository.BatchRepository) error) error
}
