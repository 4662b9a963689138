package persistence

import (
	"context"

	"GrainHero/internal/modules/alert/domain/repository"

	"gorm.io/gorm"
)

type alertUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewAlertUnitOfWork(db *gorm.DB) repository.AlertUnitOfWork {
	return &alertUnitOfWorkImpl{db: db}
}

func (u *alertUnitOfWorkImpl) Transaction(ctx context.Context, fn func(notifications repository.NotificationRepository, deliveries repository.DeliveryRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewNotificationRepository(tx), NewDeliveryRepository(tx))
	})
}
