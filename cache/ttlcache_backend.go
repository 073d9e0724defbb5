package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTLCacheBackend 基于 ttlcache 的实现
type TTLCacheBackend struct {
	c  *ttlcache.Cache[string, any]
	mu sync.Mutex // 串行化写入与读到过期后的删除
}

// NewTTLCacheBackend 新建，读取不会延长过期时间
func NewTTLCacheBackend(defaultTTL time.Duration) *TTLCacheBackend {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &TTLCacheBackend{
		c: ttlcache.New[string, any](
			ttlcache.WithTTL[string, any](defaultTTL),
			ttlcache.WithDisableTouchOnHit[string, any](),
		),
	}
}

// Start 启动后台清理，阻塞直到 Stop
func (co *TTLCacheBackend) Start() { co.c.Start() }

// Stop 停止后台清理
func (co *TTLCacheBackend) Stop() { co.c.Stop() }

// Get ttlcache对过期条目返回nil但不删除，这里加锁再确认一次后删除
func (co *TTLCacheBackend) Get(key string) (any, bool) {
	if item := co.c.Get(key); item != nil {
		return item.Value(), true
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	if item := co.c.Get(key); item != nil {
		return item.Value(), true
	}
	co.c.Delete(key)
	return nil, false
}

// Set ttl<=0 时使用默认过期时间
func (co *TTLCacheBackend) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	co.c.Set(key, value, ttl)
}

// Delete 删除一个key
func (co *TTLCacheBackend) Delete(key string) {
	co.c.Delete(key)
}

// Clear 清空
func (co *TTLCacheBackend) Clear() {
	co.c.DeleteAll()
}

// Len 条目数量
func (co *TTLCacheBackend) Len() int {
	return co.c.Len()
}
