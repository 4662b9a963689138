package persistence

import (
	"context"
	"errors"
	"time"

	"GrainHero/internal/modules/alert/domain/entity"
	"GrainHero/internal/modules/alert/domain/repository"

	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, n *entity.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Take(&n).Error
	return takeOne(&n, err)
}

func (r *notificationRepositoryImpl) FindUnreadByKey(ctx context.Context, dedupKey string, buckets []time.Time, since time.Time) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).
		Where("dedup_key = ? AND dedup_bucket IN ? AND is_read = ? AND last_event_at >= ?", dedupKey, buckets, false, since).
		Order("last_event_at DESC").
		Take(&n).Error
	return takeOne(&n, err)
}

func (r *notificationRepositoryImpl) LatestUnreadForEntity(ctx context.Context, tenantID, entityType, entityID, category string) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND category = ? AND is_read = ?",
			tenantID, entityType, entityID, category, false).
		Order("last_event_at DESC").
		Take(&n).Error
	return takeOne(&n, err)
}

func (r *notificationRepositoryImpl) Merge(ctx context.Context, id, message string, at, bucket time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"message":       message,
			"last_event_at": at,
			"dedup_bucket":  bucket,
			"occurrences":   gorm.Expr("occurrences + 1"),
		}).Error
}

func (r *notificationRepositoryImpl) List(ctx context.Context, tenantID, filter string, offset, limit int) ([]entity.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("tenant_id = ?", tenantID)
	switch filter {
	case repository.FilterUnread:
		q = q.Where("is_read = ?", false)
	case repository.FilterRead:
		q = q.Where("is_read = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []entity.Notification
	err := q.Order("last_event_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("tenant_id = ? AND is_read = ?", tenantID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, tenantID, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND tenant_id = ? AND is_read = ?", id, tenantID, false).
		Updates(map[string]any{"is_read": true, "read_at": at}).Error
}

func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, tenantID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("tenant_id = ? AND is_read = ?", tenantID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepositoryImpl) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&entity.Notification{})
	return res.RowsAffected, res.Error
}

func takeOne(n *entity.Notification, err error) (*entity.Notification, error) {
	if err == nil {
		return n, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}
