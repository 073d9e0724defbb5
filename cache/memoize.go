package cache

import (
	"context"
	"time"

	"github.com/magic-lib/go-plat-utils/logs"
	"golang.org/x/sync/singleflight"
)

// Option 记忆化包装的配置项
type Option func(*memoOptions)

type memoOptions struct {
	ttl          time.Duration
	singleFlight bool
	metrics      *Metrics
}

// WithTTL 结果的过期时间，不设置时使用Backend的默认值
func WithTTL(ttl time.Duration) Option {
	return func(o *memoOptions) {
		o.ttl = ttl
	}
}

// WithSingleFlight 同一个key并发未命中时只调用一次被包装函数。
// 默认关闭，并发未命中会各自调用。
// 开启后共享的调用使用不带取消的ctx，单个调用方ctx取消只让它自己提前返回。
func WithSingleFlight() Option {
	return func(o *memoOptions) {
		o.singleFlight = true
	}
}

// WithMetrics 统计命中、未命中和加载失败
func WithMetrics(m *Metrics) Option {
	return func(o *memoOptions) {
		o.metrics = m
	}
}

type memo[T any] struct {
	backend Backend
	prefix  string
	opts    memoOptions
	group   *singleflight.Group
}

func newMemo[T any](b Backend, prefix string, opts []Option) *memo[T] {
	m := &memo[T]{
		backend: b,
		prefix:  prefix,
	}
	for _, opt := range opts {
		opt(&m.opts)
	}
	if m.opts.singleFlight {
		m.group = new(singleflight.Group)
	}
	return m
}

// WithCache 包装单参数的查询函数，相同参数在过期前只调用一次fn。
// fn返回错误时不缓存，下次调用会重新执行。
func WithCache[A, T any](b Backend, prefix string, fn func(context.Context, A) (T, error), opts ...Option) func(context.Context, A) (T, error) {
	m := newMemo[T](b, prefix, opts)
	return func(ctx context.Context, a A) (T, error) {
		return m.do(ctx, []any{a}, func(ctx context.Context) (T, error) {
			return fn(ctx, a)
		})
	}
}

// WithCache2 包装两个参数的查询函数
func WithCache2[A, B, T any](b Backend, prefix string, fn func(context.Context, A, B) (T, error), opts ...Option) func(context.Context, A, B) (T, error) {
	m := newMemo[T](b, prefix, opts)
	return func(ctx context.Context, a A, bArg B) (T, error) {
		return m.do(ctx, []any{a, bArg}, func(ctx context.Context) (T, error) {
			return fn(ctx, a, bArg)
		})
	}
}

// WithCacheN 包装任意参数的查询函数
func WithCacheN[T any](b Backend, prefix string, fn func(context.Context, ...any) (T, error), opts ...Option) func(context.Context, ...any) (T, error) {
	m := newMemo[T](b, prefix, opts)
	return func(ctx context.Context, args ...any) (T, error) {
		return m.do(ctx, args, func(ctx context.Context) (T, error) {
			return fn(ctx, args...)
		})
	}
}

func (m *memo[T]) do(ctx context.Context, args []any, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	key, err := BuildKey(m.prefix, args...)
	if err != nil {
		logs.DefaultLogger().Error("[memo] build key error:", m.prefix, err.Error())
		return zero, err
	}

	if val, ok := m.backend.Get(key); ok {
		// T为接口时nil也是合法的缓存结果
		if val == nil && any(zero) == nil {
			m.opts.metrics.hit(m.prefix)
			return zero, nil
		}
		// 类型不符说明前缀被其他查询占用，按未命中处理并覆盖
		if ret, ok := val.(T); ok {
			m.opts.metrics.hit(m.prefix)
			return ret, nil
		}
	}
	m.opts.metrics.miss(m.prefix)

	if m.group == nil {
		return m.load(ctx, key, load)
	}
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		return m.load(shared, key, load)
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		ret, _ := res.Val.(T)
		return ret, res.Err
	}
}

// load 调用被包装函数，成功才写入缓存
func (m *memo[T]) load(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	val, err := load(ctx)
	if err != nil {
		m.opts.metrics.loadError(m.prefix)
		logs.DefaultLogger().Warn("[memo] load failed:", m.prefix, err.Error())
		return val, err
	}
	m.backend.Set(key, val, m.opts.ttl)
	return val, nil
}
