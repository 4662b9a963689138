package persistence

import (
	"context"
	"errors"
	"time"

	"GrainHero/internal/modules/storage/domain/entity"
	"GrainHero/internal/modules/storage/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var terminalStatuses = []string{
	entity.BatchStatusDispatched,
	entity.BatchStatusSold,
	entity.BatchStatusDamaged,
}

type batchRepositoryImpl struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) repository.BatchRepository {
	return &batchRepositoryImpl{db: db}
}

func (r *batchRepositoryImpl) Create(ctx context.Context, b *entity.GrainBatch) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *batchRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (*entity.GrainBatch, error) {
	return r.get(r.db.WithContext(ctx), tenantID, id)
}

func (r *batchRepositoryImpl) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.GrainBatch, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *batchRepositoryImpl) get(db *gorm.DB, tenantID, id string) (*entity.GrainBatch, error) {
	var b entity.GrainBatch
	err := db.Where("id = ? AND tenant_id = ?", id, tenantID).Take(&b).Error
	if err == nil {
		return &b, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *batchRepositoryImpl) ListBySilo(ctx context.Context, tenantID, siloID string) ([]entity.GrainBatch, error) {
	var out []entity.GrainBatch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND silo_id = ?", tenantID, siloID).
		Order("intake_date DESC").
		Find(&out).Error
	return out, err
}

func (r *batchRepositoryImpl) UpdateStatus(ctx context.Context, b *entity.GrainBatch, status string, terminalAt *time.Time) (bool, error) {
	updates := map[string]any{
		"status":     status,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now().UTC(),
	}
	if terminalAt != nil {
		updates["terminal_at"] = terminalAt
	}
	res := r.db.WithContext(ctx).Model(&entity.GrainBatch{}).
		Where("id = ? AND version = ?", b.Id, b.Version).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	b.Status = status
	b.Version++
	if terminalAt != nil {
		b.TerminalAt = terminalAt
	}
	return true, nil
}

func (r *batchRepositoryImpl) UpdateRisk(ctx context.Context, batchID string, version int64, risk repository.RiskColumns) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.GrainBatch{}).
		Where("id = ? AND version = ? AND status NOT IN ?", batchID, version, terminalStatuses).
		Updates(map[string]any{
			"risk_score":            risk.Score,
			"spoilage_label":        risk.Label,
			"risk_level":            risk.Level,
			"current_assessment_id": risk.AssessmentId,
			"version":               gorm.Expr("version + 1"),
			"updated_at":            time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *batchRepositoryImpl) ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]entity.GrainBatch, error) {
	if limit <= 0 {
		limit = 500
	}
	var out []entity.GrainBatch
	err := r.db.WithContext(ctx).
		Where("status IN ? AND terminal_at IS NOT NULL AND terminal_at < ?", terminalStatuses, cutoff).
		Order("terminal_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *batchRepositoryImpl) SoftDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entity.GrainBatch{})
	return res.RowsAffected, res.Error
}
