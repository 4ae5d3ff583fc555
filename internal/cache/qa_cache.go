package cache

import (
	"context"
	"qa-session-go/internal/model"
	"qa-session-go/pkg/log"
	"sync"
	"time"
)

// DefaultCapacity 是缓存的默认最大条目数。
const DefaultCapacity = 100

// persistTimeout 是单次快照写入的超时时间
const persistTimeout = 3 * time.Second

// Persister 负责缓存快照的持久化读写。
type Persister interface {
	Load(ctx context.Context) ([]model.QACacheEntry, error)
	Save(ctx context.Context, entries []model.QACacheEntry) error
}

// QACache 保存 问题 -> 最近一次回答 的映射，entries[0] 为最近使用。
// 任意两条记录的 Normalize(Question) 互不相同，长度不超过 capacity。
type QACache struct {
	mu        sync.Mutex
	entries   []model.QACacheEntry
	capacity  int
	persister Persister
	now       func() time.Time
	// version 每次变更递增，saveMu 保证快照按版本顺序写出
	version      uint64
	saveMu       sync.Mutex
	savedVersion uint64
}

// New 创建一个空缓存。persister 可以为 nil，此时只在内存中保存。
func New(capacity int, persister Persister) *QACache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &QACache{
		entries:   make([]model.QACacheEntry, 0, capacity),
		capacity:  capacity,
		persister: persister,
		now:       time.Now,
	}
}

// Restore 从持久化快照恢复缓存内容，快照中重复或超出容量的条目会被丢弃。
func (c *QACache) Restore(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	snapshot, err := c.persister.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{}, len(snapshot))
	restored := make([]model.QACacheEntry, 0, c.capacity)
	for _, e := range snapshot {
		key := Normalize(e.Question)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		restored = append(restored, e)
		if len(restored) == c.capacity {
			break
		}
	}
	c.entries = restored
	log.Infof("[QACache] 已从快照恢复 %d 条问答缓存", len(restored))
	return nil
}

// Lookup 查找与 question 归一化相等的条目。命中时把该条目移到最前，不修改时间戳。
func (c *QACache) Lookup(ctx context.Context, question string) (string, bool) {
	key := Normalize(question)
	if key == "" {
		return "", false
	}

	c.mu.Lock()
	idx := c.indexOf(key)
	if idx < 0 {
		c.mu.Unlock()
		return "", false
	}
	entry := c.entries[idx]
	if idx == 0 {
		c.mu.Unlock()
		return entry.Answer, true
	}
	copy(c.entries[1:idx+1], c.entries[:idx])
	c.entries[0] = entry
	snapshot, version := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot, version)
	return entry.Answer, true
}

// Insert 写入一条问答。已有归一化相等的条目时视为更新：移除旧条目并在最前插入新条目。
// 超出容量时淘汰末尾的最久未使用条目。
func (c *QACache) Insert(ctx context.Context, question, answer string) {
	key := Normalize(question)
	if key == "" {
		return
	}

	c.mu.Lock()
	if idx := c.indexOf(key); idx >= 0 {
		c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	}
	entry := model.QACacheEntry{
		Question:  question,
		Answer:    answer,
		Timestamp: c.now().UnixMilli(),
	}
	c.entries = append(c.entries, model.QACacheEntry{})
	copy(c.entries[1:], c.entries)
	c.entries[0] = entry
	if len(c.entries) > c.capacity {
		evicted := c.entries[len(c.entries)-1]
		c.entries = c.entries[:len(c.entries)-1]
		log.Debugf("[QACache] 淘汰最久未使用的问题: %s", evicted.Question)
	}
	snapshot, version := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot, version)
}

// Clear 清空缓存。
func (c *QACache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = c.entries[:0]
	snapshot, version := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot, version)
}

// AllQuestions 按最近使用到最久未使用的顺序返回所有问题原文。
func (c *QACache) AllQuestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	questions := make([]string, len(c.entries))
	for i, e := range c.entries {
		questions[i] = e.Question
	}
	return questions
}

// Len 返回当前条目数。
func (c *QACache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QACache) indexOf(key string) int {
	for i, e := range c.entries {
		if Normalize(e.Question) == key {
			return i
		}
	}
	return -1
}

// snapshotLocked 复制当前条目并递增版本号，调用方需持有 c.mu。
func (c *QACache) snapshotLocked() ([]model.QACacheEntry, uint64) {
	c.version++
	snapshot := make([]model.QACacheEntry, len(c.entries))
	copy(snapshot, c.entries)
	return snapshot, c.version
}

// persist 在 c.mu 之外写出快照。写入不随请求取消，旧版本的快照不会覆盖新版本。
// 持久化失败只记录日志。
func (c *QACache) persist(ctx context.Context, snapshot []model.QACacheEntry, version uint64) {
	if c.persister == nil {
		return
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if version <= c.savedVersion {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := c.persister.Save(ctx, snapshot); err != nil {
		log.Errorf("[QACache] 持久化问答缓存失败: %v", err)
		return
	}
	c.savedVersion = version
}
