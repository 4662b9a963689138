package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Nil is returned by Get when the key does not exist.
var Nil = redis.Nil

var errNotConnected = errors.New("redis not connected")

// SetClient is called by internal/initial once the connection is verified.
func SetClient(c *redis.Client) {
	client = c
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

func IsConnected() bool {
	return client != nil
}

func checkClient() error {
	if client == nil {
		return errNotConnected
	}
	return nil
}

// ==================== String ====================

func Get(ctx context.Context, key string) (string, error) {
	if err := checkClient(); err != nil {
		return "", err
	}
	return client.Get(ctx, key).Result()
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := checkClient(); err != nil {
		return err
	}
	return client.Set(ctx, key, value, expiration).Err()
}

func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if err := checkClient(); err != nil {
		return false, err
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}

func Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Del(ctx, keys...).Result()
}

// ==================== Distributed lock ====================

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock takes key for expiration when it is free. token identifies the owner
// so that Unlock never releases a lock re-acquired by someone else after
// expiry.
func Lock(ctx context.Context, key, token string, expiration time.Duration) (bool, error) {
	return SetNX(ctx, key, token, expiration)
}

func Unlock(ctx context.Context, key, token string) error {
	if err := checkClient(); err != nil {
		return err
	}
	return unlockScript.Run(ctx, client, []string{key}, token).Err()
}
