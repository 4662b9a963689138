package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"GrainHero/internal/modules/alert/domain/repository"
	"GrainHero/pkg/metrics"
	"GrainHero/pkg/mq"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

const (
	retryBase  = 500 * time.Millisecond
	retryCap   = 5 * time.Minute
	stuckAfter = time.Minute
)

// OutboxRelay publishes pending notification deliveries at least once.
type OutboxRelay struct {
	repo         repository.DeliveryRepository
	pub          mq.Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
}

func NewOutboxRelay(repo repository.DeliveryRepository, pub mq.Publisher, topic string, batchSize int, pollInterval time.Duration) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 200
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxRelay{
		repo:         repo,
		pub:          pub,
		topic:        strings.TrimSpace(topic),
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

func (r *OutboxRelay) Run(ctx context.Context) error {
	if r.repo == nil {
		return errors.New("delivery repo is nil")
	}
	if r.pub == nil {
		return errors.New("publisher is nil")
	}

	backoff := r.pollInterval
	for {
		n, err := r.RunOnce(ctx)
		wait := r.pollInterval
		if err != nil {
			wait = backoff
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		} else {
			backoff = r.pollInterval
			if n > 0 {
				wait = 0
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RunOnce claims one batch of due rows and publishes them. It returns the
// number published.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	rows, err := r.repo.ClaimForPublish(ctx, now, stuckAfter, r.batchSize)
	if err != nil {
		zlog.Warn("notification outbox claim failed", zap.Error(err))
		return 0, err
	}

	published := 0
	for i := range rows {
		d := rows[i]
		_, pubErr := r.pub.Publish(ctx, mq.Message{
			Topic: r.topic,
			Key:   []byte(d.TenantId),
			Value: []byte(d.Payload),
			Headers: map[string]string{
				mq.HeaderTenantID:       d.TenantId,
				mq.HeaderNotificationID: d.NotificationId,
				mq.HeaderEventType:      "notification.created",
			},
		})
		if pubErr != nil {
			metrics.OutboxPublishFailures.Inc()
			next := computeNextRetry(now, d.RetryCount)
			if err := r.repo.MarkPublishFailed(ctx, d.Id, next, pubErr.Error()); err != nil {
				zlog.Warn("notification outbox mark failed failed", zap.Int64("id", d.Id), zap.Error(err))
			}
			continue
		}
		if err := r.repo.MarkPublished(ctx, d.Id, time.Now().UTC()); err != nil {
			zlog.Warn("notification outbox mark published failed", zap.Int64("id", d.Id), zap.Error(err))
			continue
		}
		published++
	}
	return published, nil
}

// computeNextRetry doubles from 500ms per previous failure, capped at 5m.
func computeNextRetry(now time.Time, retryCount int) time.Time {
	if retryCount < 0 {
		retryCount = 0
	}
	d := retryBase
	for i := 0; i < retryCount && d < retryCap; i++ {
		d *= 2
	}
	if d > retryCap {
		d = retryCap
	}
	return now.Add(d)
}
