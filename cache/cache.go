package cache

import (
	"context"
	"time"
)

// Cache 统一缓存能力接口，所有存储策略都实现这六个操作。
// 未命中不是错误：Get 返回 (零值, false, nil)。
type Cache[T any] interface {
	// Size 返回当前存活条目数。对带 TTL 的存储，已过期但尚未清除的
	// 条目不计入（调用可能触发一次惰性清除）。
	Size(ctx context.Context) (int, error)

	// Set 插入或覆盖条目，并刷新其插入时间与过期时间。
	// 可能触发容量淘汰。
	Set(ctx context.Context, key string, value T) error

	// Get 返回键对应的值。键不存在或已过期时返回 (零值, false, nil)。
	Get(ctx context.Context, key string) (T, bool, error)

	// Has 当且仅当 Get 会返回存活值时为 true。
	Has(ctx context.Context, key string) (bool, error)

	// Delete 删除条目，返回是否发生了删除。
	Delete(ctx context.Context, key string) (bool, error)

	// Clear 清空全部条目，Size 归零。
	Clear(ctx context.Context) error
}

// Entry 存储内的单条缓存记录。ExpiresAt 为零值表示永不过期。
type Entry[T any] struct {
	Key        string    `json:"key"`
	Value      T         `json:"value"`
	InsertedAt time.Time `json:"inserted_at"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// Expired 判断条目在 now 时刻是否已过期。
func (e Entry[T]) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// SnapshotCache 支持全量快照与恢复的存储。FileCache 依赖该能力
// 将内存内容同步到磁盘。
type SnapshotCache[T any] interface {
	Cache[T]

	// Snapshot 按插入顺序返回全部存活条目。
	Snapshot(ctx context.Context) ([]Entry[T], error)

	// Restore 清空存储后按给定顺序载入条目，保留条目原有的
	// 插入/过期时间；已过期条目被跳过。
	Restore(ctx context.Context, entries []Entry[T]) error
}

// TTLCache 支持按条目覆盖默认 TTL 的存储。memoize 的动态 TTL
// 钩子依赖该能力。ttl <= 0 表示该条目永不过期。
type TTLCache[T any] interface {
	Cache[T]

	SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error
}
