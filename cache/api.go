// Package cache 进程内的带过期时间的记忆化缓存
package cache

import (
	"time"
)

// DefaultTTL 未指定过期时间时使用的默认值
const DefaultTTL = 30 * time.Minute

// Backend 记忆化缓存的存储接口，所有实现都只按时间过期
type Backend interface {
	// Get 取得一个未过期的值，已过期的条目会被顺带删除
	Get(key string) (any, bool)
	// Set 覆盖写入，ttl<=0 时使用默认过期时间
	Set(key string, value any, ttl time.Duration)
	// Delete 删除一个key，不存在时什么也不做
	Delete(key string)
	// Clear 清空所有条目
	Clear()
	// Len 当前保存的条目数量，包括尚未被清理的过期条目
	Len() int
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*GoCacheBackend)(nil)
	_ Backend = (*TTLCacheBackend)(nil)
)
