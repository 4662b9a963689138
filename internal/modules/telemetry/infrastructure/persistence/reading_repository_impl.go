package persistence

import (
	"context"
	"time"

	storageRepository "GrainHero/internal/modules/storage/domain/repository"
	storagePersistence "GrainHero/internal/modules/storage/infrastructure/persistence"
	"GrainHero/internal/modules/telemetry/domain/entity"
	"GrainHero/internal/modules/telemetry/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type readingRepositoryImpl struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) repository.ReadingRepository {
	return &readingRepositoryImpl{db: db}
}

func (r *readingRepositoryImpl) Insert(ctx context.Context, reading *entity.EnvironmentalReading) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(reading)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *readingRepositoryImpl) ListBySilo(ctx context.Context, tenantID, siloID string, since time.Time, limit int) ([]entity.EnvironmentalReading, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	var out []entity.EnvironmentalReading
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND silo_id = ? AND captured_at >= ?", tenantID, siloID, since).
		Order("captured_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

type telemetryUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewTelemetryUnitOfWork(db *gorm.DB) repository.TelemetryUnitOfWork {
	return &telemetryUnitOfWorkImpl{db: db}
}

func (u *telemetryUnitOfWorkImpl) Transaction(ctx context.Context, fn func(readings repository.ReadingRepository, silos storageRepository.SiloRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewReadingRepository(tx), storagePersistence.NewSiloRepository(tx))
	})
}
