package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// GoCacheBackend 基于 go-cache 的实现，过期条目由其后台协程定期清理
type GoCacheBackend struct {
	mCache *gocache.Cache
	mu     sync.Mutex // 串行化写入与读到过期后的删除
}

// NewGoCacheBackend 新建，cleanupInterval<=0 时不启动后台清理
func NewGoCacheBackend(defaultTTL, cleanupInterval time.Duration) *GoCacheBackend {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &GoCacheBackend{
		mCache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get go-cache对过期条目返回未找到但不删除，这里加锁再确认一次后删除，
// 避免删掉并发写入的新值
func (co *GoCacheBackend) Get(key string) (any, bool) {
	if val, ok := co.mCache.Get(key); ok {
		return val, true
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	if val, ok := co.mCache.Get(key); ok {
		return val, true
	}
	co.mCache.Delete(key)
	return nil, false
}

// Set ttl<=0 时使用默认过期时间
func (co *GoCacheBackend) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	co.mCache.Set(key, value, ttl)
}

// Delete 删除一个key
func (co *GoCacheBackend) Delete(key string) {
	co.mCache.Delete(key)
}

// Clear 清空
func (co *GoCacheBackend) Clear() {
	co.mCache.Flush()
}

// Len 条目数量，包括尚未清理的过期条目
func (co *GoCacheBackend) Len() int {
	return co.mCache.ItemCount()
}
