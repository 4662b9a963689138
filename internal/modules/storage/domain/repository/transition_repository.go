package repository

import (
	"context"

	"GrainHero/internal/modules/storage/domain/entity"
)

type TransitionRepository interface {
	Create(ctx context.Context, t *entity.BatchTransition) error
	ListByBatch(ctx context.Context, tenantID, batchID string) ([]entity.BatchTransition, error)
}
