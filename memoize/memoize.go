// Package memoize wraps deterministic operations with transparent caching.
//
// Wrap turns a func(ctx, A) (R, error) into a version that consults a
// cache.Cache before invoking the operation: on a hit the wrapped
// operation's body (and its side effects) is skipped entirely; on a miss
// the result is stored for subsequent calls. Keys derive from the
// structural JSON representation of the argument unless overridden.
package memoize

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/agentcache/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Func 被记忆化的操作签名。多参数操作以结构体作为参数元组。
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

type config[A, R any] struct {
	keyFn  func(arg A) (string, error)
	ttlFn  func(ctx context.Context, arg A, result R) time.Duration
	logger *zap.Logger
}

// Option configures a wrapped operation.
type Option[A, R any] func(*config[A, R])

// WithKeyFunc overrides the default structural key derivation.
func WithKeyFunc[A, R any](fn func(arg A) (string, error)) Option[A, R] {
	return func(c *config[A, R]) { c.keyFn = fn }
}

// WithSingletonKey collapses all calls to one shared cache key regardless
// of arguments. Useful for memoizing a zero-argument or "current state"
// accessor.
func WithSingletonKey[A, R any](key string) Option[A, R] {
	return func(c *config[A, R]) {
		c.keyFn = func(A) (string, error) { return key, nil }
	}
}

// WithTTLFunc derives a per-result TTL after the operation ran (e.g. from
// a response payload), overriding the store's default for that entry.
// Requires a store implementing cache.TTLCache; otherwise the TTL is
// ignored and the store default applies.
func WithTTLFunc[A, R any](fn func(ctx context.Context, arg A, result R) time.Duration) Option[A, R] {
	return func(c *config[A, R]) { c.ttlFn = fn }
}

// WithLogger sets a custom zap logger.
func WithLogger[A, R any](logger *zap.Logger) Option[A, R] {
	return func(c *config[A, R]) { c.logger = logger }
}

// Wrap returns a cached version of fn backed by store.
//
// Concurrent misses on the same key are collapsed into a single
// invocation (singleflight). Errors returned by fn are propagated and
// never cached, so the next call retries.
func Wrap[A, R any](store cache.Cache[R], fn Func[A, R], opts ...Option[A, R]) Func[A, R] {
	strategy := cache.NewHashKeyStrategy("memo:")
	cfg := config[A, R]{
		keyFn:  func(arg A) (string, error) { return strategy.Key(arg), nil },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger.With(zap.String("component", "memoize"))

	var group singleflight.Group
	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		key, err := cfg.keyFn(arg)
		if err != nil {
			return zero, fmt.Errorf("derive cache key: %w", err)
		}

		if value, ok, err := store.Get(ctx, key); err != nil {
			return zero, err
		} else if ok {
			logger.Debug("cache hit", zap.String("key", key))
			return value, nil
		}

		result, err, _ := group.Do(key, func() (any, error) {
			// 并发未命中者在此合流，赢家落缓存后其余直接复用。
			if value, ok, err := store.Get(ctx, key); err != nil {
				return nil, err
			} else if ok {
				return value, nil
			}

			value, err := fn(ctx, arg)
			if err != nil {
				return nil, err
			}
			if err := cfg.put(ctx, store, key, arg, value); err != nil {
				return nil, err
			}
			logger.Debug("cached result", zap.String("key", key))
			return value, nil
		})
		if err != nil {
			return zero, err
		}
		return result.(R), nil
	}
}

func (c config[A, R]) put(ctx context.Context, store cache.Cache[R], key string, arg A, value R) error {
	if c.ttlFn != nil {
		if tc, ok := store.(cache.TTLCache[R]); ok {
			return tc.SetWithTTL(ctx, key, value, c.ttlFn(ctx, arg, value))
		}
	}
	return store.Set(ctx, key, value)
}
