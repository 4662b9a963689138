package keylock

import (
	"context"
	"time"

	"GrainHero/pkg/redis"
	"GrainHero/pkg/util"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

// RedisLocker layers a Redis lock over the in-process one so that several
// engine instances serialize on the same key. Without a Redis connection it
// behaves like the local KeyedMutex.
type RedisLocker struct {
	local  *KeyedMutex
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		local:  New(),
		prefix: prefix,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := r.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	if !redis.IsConnected() {
		return unlockLocal, nil
	}

	rkey := r.prefix + key
	token := util.GenerateShortUUID()
	wait := r.retry
	for {
		ok, err := redis.Lock(ctx, rkey, token, r.ttl)
		if err != nil {
			// Redis trouble degrades to in-process serialization only.
			zlog.Warn("redis lock failed, using local lock", zap.String("key", rkey), zap.Error(err))
			return unlockLocal, nil
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		if wait < 500*time.Millisecond {
			wait *= 2
		}
	}

	return func() {
		if err := redis.Unlock(context.Background(), rkey, token); err != nil {
			zlog.Warn("redis unlock failed", zap.String("key", rkey), zap.Error(err))
		}
		unlockLocal()
	}, nil
}
