package redis

import (
	"context"
	"fmt"
	"time"

	"reelgo/internal/config"
	"reelgo/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

const pingTimeout = 5 * time.Second

// Init 建立 Redis 连接
// 信息流缓存和广告冷却标记都走这个实例
func Init(cfg *config.RedisConfig) error {
	c := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.PoolSize / 4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	client = c
	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
	)
	return nil
}

// Close 关闭 Redis 连接
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Redis connection closed")
	return client.Close()
}

// Get 获取 Redis 客户端，未初始化时返回 nil，调用方按缓存未命中处理
func Get() *redis.Client {
	return client
}
