// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"qa-session-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// CacheRepository 在 Redis 中以固定键保存问答缓存的完整快照。
type CacheRepository interface {
	Load(ctx context.Context) ([]model.QACacheEntry, error)
	Save(ctx context.Context, entries []model.QACacheEntry) error
}

type redisCacheRepository struct {
	redisClient *redis.Client
	key         string
}

// NewCacheRepository 创建一个新的 CacheRepository 实例。
func NewCacheRepository(redisClient *redis.Client, key string) CacheRepository {
	return &redisCacheRepository{redisClient: redisClient, key: key}
}

// Load 读取快照，键不存在时返回空列表。
func (r *redisCacheRepository) Load(ctx context.Context) ([]model.QACacheEntry, error) {
	return decodeSnapshot(r.redisClient.Get(ctx, r.key).Result())
}

// Save 覆盖写入快照，快照不设置过期时间。
func (r *redisCacheRepository) Save(ctx context.Context, entries []model.QACacheEntry) error {
	jsonData, err := encodeSnapshot(entries)
	if err != nil {
		return err
	}
	if err := r.redisClient.Set(ctx, r.key, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to set qa cache snapshot: %w", err)
	}
	return nil
}

// encodeSnapshot 把快照编码为 JSON，nil 编码为空数组。
func encodeSnapshot(entries []model.QACacheEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.QACacheEntry{}
	}
	jsonData, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qa cache snapshot: %w", err)
	}
	return jsonData, nil
}

// decodeSnapshot 解析 GET 的结果，redis.Nil 表示尚无快照。
func decodeSnapshot(jsonData string, err error) ([]model.QACacheEntry, error) {
	if errors.Is(err, redis.Nil) {
		return []model.QACacheEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get qa cache snapshot: %w", err)
	}
	var entries []model.QACacheEntry
	if err := json.Unmarshal([]byte(jsonData), &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal qa cache snapshot: %w", err)
	}
	if entries == nil {
		entries = []model.QACacheEntry{}
	}
	return entries, nil
}
