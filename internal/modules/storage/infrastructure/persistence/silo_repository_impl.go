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

type siloRepositoryImpl struct {
	db *gorm.DB
}

func NewSiloRepository(db *gorm.DB) repository.SiloRepository {
	return &siloRepositoryImpl{db: db}
}

func (r *siloRepositoryImpl) Create(ctx context.Context, s *entity.Silo) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = entity.SiloStatusActive
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *siloRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (*entity.Silo, error) {
	return r.get(r.db.WithContext(ctx), tenantID, id)
}

func (r *siloRepositoryImpl) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.Silo, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *siloRepositoryImpl) get(db *gorm.DB, tenantID, id string) (*entity.Silo, error) {
	var s entity.Silo
	err := db.Where("id = ? AND tenant_id = ?", id, tenantID).Take(&s).Error
	if err == nil {
		return &s, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *siloRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]entity.Silo, error) {
	var out []entity.Silo
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *siloRepositoryImpl) ListWithSnapshot(ctx context.Context) ([]entity.Silo, error) {
	var out []entity.Silo
	err := r.db.WithContext(ctx).
		Where("status = ? AND snapshot_at IS NOT NULL", entity.SiloStatusActive).
		Order("tenant_id ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *siloRepositoryImpl) UpdateSnapshot(ctx context.Context, s *entity.Silo) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Silo{}).
		Where("id = ? AND version = ?", s.Id, s.Version).
		Updates(map[string]any{
			"temperature":    s.Temperature,
			"temperature_at": s.TemperatureAt,
			"humidity":       s.Humidity,
			"humidity_at":    s.HumidityAt,
			"co2":            s.Co2,
			"co2_at":         s.Co2At,
			"snapshot_at":    s.SnapshotAt,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.Version++
	return true, nil
}

func (r *siloRepositoryImpl) Occupy(ctx context.Context, siloID, batchID string, quantityKg float64) error {
	return r.db.WithContext(ctx).Model(&entity.Silo{}).
		Where("id = ?", siloID).
		Updates(map[string]any{
			"current_batch_id":     batchID,
			"current_occupancy_kg": gorm.Expr("current_occupancy_kg + ?", quantityKg),
			"version":              gorm.Expr("version + 1"),
			"updated_at":           time.Now().UTC(),
		}).Error
}

func (r *siloRepositoryImpl) Release(ctx context.Context, siloID, batchID string, quantityKg float64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Silo{}).
		Where("id = ? AND current_batch_id = ?", siloID, batchID).
		Updates(map[string]any{
			"current_batch_id": nil,
			"current_occupancy_kg": gorm.Expr(
				"CASE WHEN current_occupancy_kg - ? < 0 THEN 0 ELSE current_occupancy_kg - ? END",
				quantityKg, quantityKg),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}
