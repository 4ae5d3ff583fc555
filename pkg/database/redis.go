// Package database 初始化引擎使用的 Redis 与 MySQL 连接。
package database

import (
	"context"
	"qa-session-go/internal/config"
	"qa-session-go/pkg/log"
	"time"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接，问答缓存快照保存在这里。
func InitRedis(cfg config.RedisConfig) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		return err
	}

	log.Infof("Redis 连接成功: %s (db=%d)", cfg.Addr, cfg.DB)
	return nil
}
