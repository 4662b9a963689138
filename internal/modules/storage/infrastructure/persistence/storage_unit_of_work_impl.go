package persistence

import (
	"context"

	"GrainHero/internal/modules/storage/domain/repository"

	"gorm.io/gorm"
)

type storageUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewStorageUnitOfWork(db *gorm.DB) repository.StorageUnitOfWork {
	return &storageUnitOfWorkImpl{db: db}
}

func (u *storageUnitOfWorkImpl) Transaction(ctx context.Context, fn func(silos repository.SiloRepository, batches repository.BatchRepository, transitions repository.TransitionRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewSiloRepository(tx), NewBatchRepository(tx), NewTransitionRepository(tx))
	})
}
