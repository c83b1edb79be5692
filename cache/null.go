package cache

import "context"

// NullCache 空对象存储：永远为空的 Cache 实现。
// 用作可替换的"已禁用缓存"，让需要 Cache 的调用方无需条件分支。
type NullCache[T any] struct{}

// NewNullCache creates a stateless always-empty store.
func NewNullCache[T any]() *NullCache[T] {
	return &NullCache[T]{}
}

func (c *NullCache[T]) Size(ctx context.Context) (int, error) { return 0, nil }

func (c *NullCache[T]) Set(ctx context.Context, key string, value T) error { return nil }

func (c *NullCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (c *NullCache[T]) Has(ctx context.Context, key string) (bool, error) { return false, nil }

func (c *NullCache[T]) Delete(ctx context.Context, key string) (bool, error) { return false, nil }

func (c *NullCache[T]) Clear(ctx context.Context) error { return nil }
