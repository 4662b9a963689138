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

type tenantRepositoryImpl struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) repository.TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

func (r *tenantRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&t).Error
	if err == nil {
		return &t, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *tenantRepositoryImpl) Create(ctx context.Context, t *entity.Tenant) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tenantRepositoryImpl) GetPolicy(ctx context.Context, tenantID string) (*entity.TenantPolicy, error) {
	var p entity.TenantPolicy
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Take(&p).Error
	if err == nil {
		return &p, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *tenantRepositoryImpl) SavePolicy(ctx context.Context, p *entity.TenantPolicy) error {
	p.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"auto_hold_on_critical", "staleness_window_seconds", "dedup_window_seconds", "updated_at"}),
	}).Create(p).Error
}
