package service

import (
	"context"
	"encoding/json"
	"time"

	"GrainHero/internal/modules/alert/application/dto/respond"
	"GrainHero/internal/modules/alert/domain/dedup"
	"GrainHero/internal/modules/alert/domain/entity"
	"GrainHero/internal/modules/alert/domain/repository"
	"GrainHero/pkg/keylock"
	"GrainHero/pkg/metrics"
	"GrainHero/pkg/util"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	OutcomeCreated = "created"
	OutcomeMerged  = "merged"
)

// DispatchResult tells whether an event opened a new notification or was
// folded into an existing one.
type DispatchResult struct {
	Notification *entity.Notification
	Outcome      string
}

// DispatcherService turns events into deduplicated notifications.
type DispatcherService interface {
	Dispatch(ctx context.Context, ev dedup.Event, window time.Duration) (*DispatchResult, error)
}

type dispatcherServiceImpl struct {
	uow    repository.AlertUnitOfWork
	locker keylock.Locker
}

func NewDispatcherService(uow repository.AlertUnitOfWork, locker keylock.Locker) DispatcherService {
	if locker == nil {
		locker = keylock.New()
	}
	return &dispatcherServiceImpl{uow: uow, locker: locker}
}

func (s *dispatcherServiceImpl) Dispatch(ctx context.Context, ev dedup.Event, window time.Duration) (*DispatchResult, error) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	ev.At = ev.At.UTC()
	key := ev.Key()

	unlock, err := s.locker.Lock(ctx, "dedup:"+key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *DispatchResult
	err = s.uow.Transaction(ctx, func(notifications repository.NotificationRepository, deliveries repository.DeliveryRepository) error {
		existing, err := notifications.FindUnreadByKey(ctx, key, dedup.Buckets(ev.At, window), ev.At.Add(-window))
		if err != nil {
			return err
		}
		latest, err := notifications.LatestUnreadForEntity(ctx, ev.TenantId, ev.EntityType, ev.EntityId, ev.Category)
		if err != nil {
			return err
		}
		escalation := latest != nil && ev.Severity() > latest.Severity

		if existing != nil && !escalation {
			if err := notifications.Merge(ctx, existing.Id, ev.Message, ev.At, dedup.Bucket(ev.At, window)); err != nil {
				return err
			}
			existing.Message = ev.Message
			existing.LastEventAt = ev.At
			existing.Occurrences++
			result = &DispatchResult{Notification: existing, Outcome: OutcomeMerged}
			return nil
		}

		n := newNotification(ev, key, window)
		if err := notifications.Create(ctx, n); err != nil {
			return err
		}
		payload, err := json.Marshal(respond.PushPayload{
			Type:         "notification.created",
			Notification: respond.NewNotificationItem(n),
		})
		if err != nil {
			return err
		}
		if err := deliveries.Create(ctx, &entity.NotificationDelivery{
			NotificationId: n.Id,
			TenantId:       n.TenantId,
			Channel:        entity.ChannelInApp,
			Payload:        datatypes.JSON(payload),
			PublishStatus:  entity.PublishStatusPending,
		}); err != nil {
			return err
		}
		result = &DispatchResult{Notification: n, Outcome: OutcomeCreated}
		return nil
	})
	if err != nil {
		zlog.Error("dispatch notification failed",
			zap.String("tenant_id", ev.TenantId), zap.String("dedup_key", key), zap.Error(err))
		return nil, err
	}

	metrics.NotificationsDispatched.WithLabelValues(ev.Category, result.Outcome).Inc()
	zlog.Info("notification dispatched",
		zap.String("tenant_id", ev.TenantId), zap.String("dedup_key", key),
		zap.String("outcome", result.Outcome), zap.String("notification_id", result.Notification.Id))
	return result, nil
}

func newNotification(ev dedup.Event, key string, window time.Duration) *entity.Notification {
	n := &entity.Notification{
		Id:          util.GenerateID("N"),
		TenantId:    ev.TenantId,
		EntityType:  ev.EntityType,
		EntityId:    ev.EntityId,
		Category:    ev.Category,
		Type:        ev.Type,
		Severity:    ev.Severity(),
		Title:       ev.Title,
		Message:     ev.Message,
		ActionUrl:   ev.ActionUrl,
		DedupKey:    key,
		DedupBucket: dedup.Bucket(ev.At, window),
		Occurrences: 1,
		LastEventAt: ev.At,
		CreatedAt:   ev.At,
	}
	if ev.BatchId != "" {
		id := ev.BatchId
		n.BatchId = &id
	}
	if ev.SiloId != "" {
		id := ev.SiloId
		n.SiloId = &id
	}
	return n
}
