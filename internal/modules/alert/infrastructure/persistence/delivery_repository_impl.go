package persistence

import (
	"context"
	"strings"
	"time"

	"GrainHero/internal/modules/alert/domain/entity"
	"GrainHero/internal/modules/alert/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type deliveryRepositoryImpl struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) repository.DeliveryRepository {
	return &deliveryRepositoryImpl{db: db}
}

func (r *deliveryRepositoryImpl) Create(ctx context.Context, d *entity.NotificationDelivery) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *deliveryRepositoryImpl) ClaimForPublish(ctx context.Context, now time.Time, stuckAfter time.Duration, limit int) ([]entity.NotificationDelivery, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []entity.NotificationDelivery
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []entity.NotificationDelivery
		q := tx.Model(&entity.NotificationDelivery{}).
			Where("((publish_status = ? OR publish_status = ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)) OR (publish_status = ? AND updated_at <= ?)",
				entity.PublishStatusPending, entity.PublishStatusFailed, now,
				entity.PublishStatusPublishing, now.Add(-stuckAfter)).
			Order("id ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			out = []entity.NotificationDelivery{}
			return nil
		}

		ids := make([]int64, 0, len(rows))
		for i := range rows {
			ids = append(ids, rows[i].Id)
		}
		if err := tx.Model(&entity.NotificationDelivery{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"publish_status": entity.PublishStatusPublishing, "updated_at": now}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].PublishStatus = entity.PublishStatusPublishing
		}
		out = rows
		return nil
	})
	return out, err
}

func (r *deliveryRepositoryImpl) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.NotificationDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"publish_status": entity.PublishStatusPublished,
			"published_at":   publishedAt,
			"last_error":     "",
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *deliveryRepositoryImpl) MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error {
	errMsg = strings.TrimSpace(errMsg)
	if len(errMsg) > 255 {
		errMsg = errMsg[:255]
	}
	return r.db.WithContext(ctx).Model(&entity.NotificationDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"publish_status": entity.PublishStatusFailed,
			"retry_count":    gorm.Expr("retry_count + 1"),
			"next_retry_at":  nextRetryAt,
			"last_error":     errMsg,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *deliveryRepositoryImpl) PurgePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("publish_status = ? AND published_at < ?", entity.PublishStatusPublished, cutoff).
		Delete(&entity.NotificationDelivery{})
	return res.RowsAffected, res.Error
}
