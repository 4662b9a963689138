package persistence

import (
	"context"
	"errors"

	"GrainHero/internal/modules/risk/domain/entity"
	"GrainHero/internal/modules/risk/domain/repository"
	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	storagePersistence "GrainHero/internal/modules/storage/infrastructure/persistence"

	"gorm.io/gorm"
)

type assessmentRepositoryImpl struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) repository.AssessmentRepository {
	return &assessmentRepositoryImpl{db: db}
}

func (r *assessmentRepositoryImpl) Insert(ctx context.Context, a *entity.RiskAssessment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assessmentRepositoryImpl) GetCurrent(ctx context.Context, tenantID, batchID string) (*entity.RiskAssessment, error) {
	var a entity.RiskAssessment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND batch_id = ? AND is_current = ?", tenantID, batchID, true).
		Order("computed_at DESC").
		Take(&a).Error
	if err == nil {
		return &a, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *assessmentRepositoryImpl) ListHistory(ctx context.Context, tenantID, batchID string, limit int) ([]entity.RiskAssessment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []entity.RiskAssessment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND batch_id = ?", tenantID, batchID).
		Order("computed_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *assessmentRepositoryImpl) ClearCurrent(ctx context.Context, batchID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.RiskAssessment{}).
		Where("batch_id = ? AND is_current = ?", batchID, true).
		Update("is_current", false)
	return res.RowsAffected, res.Error
}

func (r *assessmentRepositoryImpl) CountCurrent(ctx context.Context, batchID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.RiskAssessment{}).
		Where("batch_id = ? AND is_current = ?", batchID, true).
		Count(&n).Error
	return n, err
}

type riskUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewRiskUnitOfWork(db *gorm.DB) repository.RiskUnitOfWork {
	return &riskUnitOfWorkImpl{db: db}
}

func (u *riskUnitOfWorkImpl) Transaction(ctx context.Context, fn func(assessments repository.AssessmentRepository, batches storageRepository.BatchRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAssessmentRepository(tx), storagePersistence.NewBatchRepository(tx))
	})
}
