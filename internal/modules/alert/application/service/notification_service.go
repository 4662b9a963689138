package service

import (
	"context"
	"time"

	"GrainHero/internal/modules/alert/application/dto/request"
	"GrainHero/internal/modules/alert/application/dto/respond"
	"GrainHero/internal/modules/alert/domain/repository"
	"GrainHero/pkg/xerr"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

type NotificationService interface {
	List(ctx context.Context, tenantID string, req request.ListNotificationsRequest) (*respond.NotificationListRespond, error)
	UnreadCount(ctx context.Context, tenantID string) (int64, error)
	// MarkRead is idempotent and returns the tenant's remaining unread count.
	MarkRead(ctx context.Context, tenantID, id string) (int64, error)
	MarkAllRead(ctx context.Context, tenantID string) (int64, error)
	// Purge removes read notifications and published deliveries older than
	// retention.
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepository
	deliveryRepo     repository.DeliveryRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository, deliveryRepo repository.DeliveryRepository) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo, deliveryRepo: deliveryRepo}
}

func (s *notificationServiceImpl) List(ctx context.Context, tenantID string, req request.ListNotificationsRequest) (*respond.NotificationListRespond, error) {
	filter := req.Filter
	switch filter {
	case "":
		filter = repository.FilterAll
	case repository.FilterAll, repository.FilterUnread, repository.FilterRead:
	default:
		return nil, xerr.WithReason(xerr.BadRequest, "filter", "filter must be all, unread or read")
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	items, total, err := s.notificationRepo.List(ctx, tenantID, filter, (page-1)*size, size)
	if err != nil {
		zlog.Error("list notifications failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := &respond.NotificationListRespond{
		Items:    make([]respond.NotificationItem, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: size,
	}
	for i := range items {
		out.Items = append(out.Items, respond.NewNotificationItem(&items[i]))
	}
	return out, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, tenantID string) (int64, error) {
	n, err := s.notificationRepo.CountUnread(ctx, tenantID)
	if err != nil {
		zlog.Error("count unread failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return 0, xerr.ErrServerError
	}
	return n, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, tenantID, id string) (int64, error) {
	n, err := s.notificationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		zlog.Error("load notification failed", zap.String("notification_id", id), zap.Error(err))
		return 0, xerr.ErrServerError
	}
	if n == nil {
		return 0, xerr.ErrNotFound
	}
	if !n.IsRead {
		if err := s.notificationRepo.MarkRead(ctx, tenantID, id, time.Now().UTC()); err != nil {
			zlog.Error("mark read failed", zap.String("notification_id", id), zap.Error(err))
			return 0, xerr.ErrServerError
		}
	}
	return s.UnreadCount(ctx, tenantID)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, tenantID string) (int64, error) {
	changed, err := s.notificationRepo.MarkAllRead(ctx, tenantID, time.Now().UTC())
	if err != nil {
		zlog.Error("mark all read failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return 0, xerr.ErrServerError
	}
	if changed > 0 {
		zlog.Info("notifications marked read", zap.String("tenant_id", tenantID), zap.Int64("count", changed))
	}
	return s.UnreadCount(ctx, tenantID)
}

func (s *notificationServiceImpl) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	n, err := s.notificationRepo.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	d, err := s.deliveryRepo.PurgePublishedBefore(ctx, cutoff)
	if err != nil {
		return n, err
	}
	if n > 0 || d > 0 {
		zlog.Info("notification purge", zap.Int64("notifications", n), zap.Int64("deliveries", d))
	}
	return n, nil
}
