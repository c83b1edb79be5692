package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UnconstrainedConfig configures the unconstrained store.
type UnconstrainedConfig struct {
	// TTL 新条目的默认存活时间，0 表示永不过期（常用情形）。
	TTL time.Duration `yaml:"ttl" json:"ttl"`

	// Disabled 为 true 时 Set 为空操作，Get/Has 永远为空。
	Disabled bool `yaml:"disabled" json:"disabled"`
}

// UnconstrainedCache is the default, development-oriented store: a plain
// key->entry map with no capacity limit. Entries live until explicit
// delete/clear unless a default TTL is configured.
type UnconstrainedCache[T any] struct {
	mu       sync.RWMutex
	entries  map[string]Entry[T]
	ttl      time.Duration
	disabled bool
	now      func() time.Time
	logger   *zap.Logger
}

// NewUnconstrainedCache creates an unconstrained store.
func NewUnconstrainedCache[T any](cfg UnconstrainedConfig, logger *zap.Logger) (*UnconstrainedCache[T], error) {
	if cfg.TTL < 0 {
		return nil, newConfigError("ttl", "must not be negative")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnconstrainedCache[T]{
		entries:  make(map[string]Entry[T]),
		ttl:      cfg.TTL,
		disabled: cfg.Disabled,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "cache.unconstrained")),
	}, nil
}

// SetEnabled toggles the store. While disabled the store behaves as
// permanently empty; existing entries are retained and become visible
// again once re-enabled.
func (c *UnconstrainedCache[T]) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = !enabled
}

// Enabled reports whether the store currently accepts and serves entries.
func (c *UnconstrainedCache[T]) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled
}

// Size returns the live entry count, purging expired entries it finds.
func (c *UnconstrainedCache[T]) Size(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return 0, nil
	}
	c.purgeExpiredLocked()
	return len(c.entries), nil
}

// Set inserts or overwrites an entry, refreshing its timestamps.
func (c *UnconstrainedCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL inserts an entry with an explicit lifetime, overriding the
// store default. ttl <= 0 means the entry never expires.
func (c *UnconstrainedCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil
	}

	now := c.now()
	entry := Entry[T]{Key: key, Value: value, InsertedAt: now}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

// Get returns the stored value, treating expired entries as absent and
// removing them on discovery.
func (c *UnconstrainedCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	c.mu.RLock()
	if c.disabled {
		c.mu.RUnlock()
		return zero, false, nil
	}
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return zero, false, nil
	}
	if entry.Expired(c.now()) {
		// Re-check under the write lock before purging.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.Expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false, nil
	}
	return entry.Value, true, nil
}

// Has reports whether Get would return a live value.
func (c *UnconstrainedCache[T]) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.Get(ctx, key)
	return ok, err
}

// Delete removes the entry if present and reports whether removal occurred.
func (c *UnconstrainedCache[T]) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return false, nil
	}
	entry, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	delete(c.entries, key)
	if entry.Expired(c.now()) {
		// 已过期条目对调用方不可见，删除它不算一次删除。
		return false, nil
	}
	return true, nil
}

// Clear removes all entries.
func (c *UnconstrainedCache[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[T])
	return nil
}

// Snapshot returns all live entries ordered by insertion time.
func (c *UnconstrainedCache[T]) Snapshot(ctx context.Context) ([]Entry[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpiredLocked()

	out := make([]Entry[T], 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InsertedAt.Equal(out[j].InsertedAt) {
			return out[i].InsertedAt.Before(out[j].InsertedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Restore replaces the store contents with the given entries, keeping
// their recorded timestamps. Expired entries are skipped.
func (c *UnconstrainedCache[T]) Restore(ctx context.Context, entries []Entry[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries = make(map[string]Entry[T], len(entries))
	for _, entry := range entries {
		if entry.Expired(now) {
			continue
		}
		c.entries[entry.Key] = entry
	}
	return nil
}

func (c *UnconstrainedCache[T]) purgeExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
		}
	}
}
