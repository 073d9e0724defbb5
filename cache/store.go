package cache

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// StoreConfig 用于配置 Store
type StoreConfig struct {
	DefaultTTL time.Duration // 默认过期时间，为0时使用 DefaultTTL
	Clock      Clock         // 时间来源，为nil时使用系统时间
	Metrics    *Metrics      // 过期统计，可为nil
}

// entry 缓存中的单个条目，写入时整体替换，不会原地修改
type entry struct {
	value     any
	expiresAt time.Time
}

// expired now >= expiresAt 即视为过期
func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Store 基于分片map的内存缓存，读到过期条目时才删除
type Store struct {
	items      cmap.ConcurrentMap[string, entry]
	defaultTTL time.Duration
	clock      Clock
	metrics    *Metrics
}

// NewStore 新建Store，cfg可为nil
func NewStore(cfg *StoreConfig) *Store {
	if cfg == nil {
		cfg = &StoreConfig{}
	}
	s := &Store{
		items:      cmap.New[entry](),
		defaultTTL: cfg.DefaultTTL,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
	}
	if s.defaultTTL <= 0 {
		s.defaultTTL = DefaultTTL
	}
	if s.clock == nil {
		s.clock = SystemClock
	}
	return s
}

// Get 取得未过期的值，过期则删除并返回false
func (s *Store) Get(key string) (any, bool) {
	ent, ok := s.items.Get(key)
	if !ok {
		return nil, false
	}
	now := s.clock.Now()
	if !ent.expired(now) {
		return ent.value, true
	}
	s.removeExpired(key, now)
	return nil, false
}

// Set 覆盖写入，ttl<=0 时使用默认过期时间
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.items.Set(key, entry{
		value:     value,
		expiresAt: s.clock.Now().Add(ttl),
	})
}

// Delete 删除指定key
func (s *Store) Delete(key string) {
	s.items.Remove(key)
}

// Clear 清空所有条目
func (s *Store) Clear() {
	s.items.Clear()
}

// Len 条目数量，包括尚未被清理的过期条目
func (s *Store) Len() int {
	return s.items.Count()
}

// DefaultTTL 返回默认过期时间
func (s *Store) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// removeExpired 只有在条目仍然过期时才删除，避免删掉并发写入的新值
func (s *Store) removeExpired(key string, now time.Time) bool {
	removed := s.items.RemoveCb(key, func(_ string, ent entry, exists bool) bool {
		return exists && ent.expired(now)
	})
	if removed {
		s.metrics.expired()
	}
	return removed
}
