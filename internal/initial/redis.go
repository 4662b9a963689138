package initial

import (
	"context"
	"fmt"
	"time"

	"GrainHero/internal/config"
	"GrainHero/pkg/redis"
	"GrainHero/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SetupRedis connects pkg/redis. Without a configured host, or when the
// server does not answer, the engine runs on in-process locks and no policy
// cache. It reports whether Redis is available.
func SetupRedis(conf *config.Config) bool {
	host := conf.RedisConfig.Host
	port := conf.RedisConfig.Port
	if host == "" {
		zlog.Info("redis not configured, skipping")
		return false
	}
	if port == 0 {
		port = 6379
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	zlog.Info("redis connecting", zap.String("addr", addr))

	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.RedisConfig.Password,
		DB:           conf.RedisConfig.DB,
		PoolSize:     conf.RedisConfig.PoolSize,
		MinIdleConns: conf.RedisConfig.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zlog.Error("redis ping failed", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return false
	}

	redis.SetClient(client)
	zlog.Info("redis connected", zap.String("addr", addr))
	return true
}
