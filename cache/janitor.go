package cache

import (
	"context"
	"time"

	"github.com/magic-lib/go-plat-utils/goroutines"
	"github.com/samber/lo"
)

// DeleteExpired 删除所有已过期的条目，返回删除数量
func (s *Store) DeleteExpired() int {
	now := s.clock.Now()
	stale := lo.Keys(lo.PickBy(s.items.Items(), func(_ string, ent entry) bool {
		return ent.expired(now)
	}))
	return lo.CountBy(stale, func(key string) bool {
		return s.removeExpired(key, now)
	})
}

// StartJanitor 后台定时清理过期条目，ctx取消后退出。
// 不启动时过期条目只在下次读取时删除。
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	goroutines.GoAsync(func(params ...any) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.DeleteExpired()
			}
		}
	}, nil)
}
