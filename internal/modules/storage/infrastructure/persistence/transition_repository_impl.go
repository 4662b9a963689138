package persistence

import (
	"context"
	"time"

	"GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/domain/repository"

	"gorm.io/gorm"
)

type transitionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransitionRepository(db *gorm.DB) repository.TransitionRepository {
	return &transitionRepositoryImpl{db: db}
}

func (r *transitionRepositoryImpl) Create(ctx context.Context, t *entity.BatchTransition) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transitionRepositoryImpl) ListByBatch(ctx context.Context, tenantID, batchID string) ([]entity.BatchTransition, error) {
	var out []entity.BatchTransition
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND batch_id = ?", tenantID, batchID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
