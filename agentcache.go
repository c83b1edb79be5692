// Package agentcache provides a top-level convenience entry point for the
// cache family with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/agentcache"
//
//	c, err := agentcache.Sliding[string](50, time.Minute, nil)
//	f := agentcache.Memoize(c, expensiveFn)
//
// This is a thin wrapper around the cache and memoize packages; both
// produce identical results. Use this package when you prefer the
// shorter import path.
package agentcache

import (
	"time"

	"github.com/BaSui01/agentcache/cache"
	"github.com/BaSui01/agentcache/memoize"
	"go.uber.org/zap"
)

// Cache is the capability contract every store implements.
type Cache[T any] = cache.Cache[T]

// Config selects and configures a store for [New].
type Config = cache.Config

// New builds a store from a [Config].
func New[T any](cfg Config, logger *zap.Logger) (Cache[T], error) {
	return cache.New[T](cfg, logger)
}

// Unconstrained creates the default unbounded store.
func Unconstrained[T any](logger *zap.Logger) (*cache.UnconstrainedCache[T], error) {
	return cache.NewUnconstrainedCache[T](cache.UnconstrainedConfig{}, logger)
}

// Sliding creates a bounded store evicting oldest-inserted entries beyond
// size; ttl of 0 disables time-based expiry.
func Sliding[T any](size int, ttl time.Duration, logger *zap.Logger) (*cache.SlidingCache[T], error) {
	return cache.NewSlidingCache[T](cache.SlidingConfig{Size: size, TTL: ttl}, logger)
}

// File creates a file-persisted store at path backed by an unconstrained
// in-memory store.
func File[T any](path string, logger *zap.Logger) (*cache.FileCache[T], error) {
	return cache.NewFileCache[T](cache.FileConfig{Path: path}, logger)
}

// Null creates the always-empty Null Object store.
func Null[T any]() *cache.NullCache[T] {
	return cache.NewNullCache[T]()
}

// Memoize wraps fn with transparent caching backed by store.
func Memoize[A, R any](store Cache[R], fn memoize.Func[A, R], opts ...memoize.Option[A, R]) memoize.Func[A, R] {
	return memoize.Wrap(store, fn, opts...)
}
