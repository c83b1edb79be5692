package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SlidingConfig configures the sliding-window store.
type SlidingConfig struct {
	// Size 最大条目数，必填且必须为正。
	Size int `yaml:"size" json:"size"`

	// TTL 条目存活时间，0 表示不按时间过期。
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// SlidingCache is a capacity-bounded store with optional TTL expiry.
//
// Eviction is FIFO by insertion time, not LRU: when an insert pushes the
// store beyond capacity, the oldest-inserted entry goes first. Re-setting
// an existing key is treated as delete+insert, so it moves to the
// most-recent position. Expired entries are purged lazily on access;
// there is no background sweeper.
type SlidingCache[T any] struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = oldest inserted
	cfg      SlidingConfig
	disabled bool
	now      func() time.Time
	logger   *zap.Logger
	stats    Stats
}

// NewSlidingCache creates a sliding-window store. Size must be positive
// and TTL non-negative; violations are construction-time errors.
func NewSlidingCache[T any](cfg SlidingConfig, logger *zap.Logger) (*SlidingCache[T], error) {
	if cfg.Size <= 0 {
		return nil, newConfigError("size", "must be a positive capacity")
	}
	if cfg.TTL < 0 {
		return nil, newConfigError("ttl", "must not be negative")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlidingCache[T]{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With(zap.String("component", "cache.sliding")),
	}, nil
}

// SetEnabled toggles the store; while disabled it behaves as permanently empty.
func (c *SlidingCache[T]) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = !enabled
}

// Enabled reports whether the store currently accepts and serves entries.
func (c *SlidingCache[T]) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disabled
}

// Size returns the live entry count after purging expired entries.
func (c *SlidingCache[T]) Size(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return 0, nil
	}
	c.purgeExpiredLocked()
	return c.order.Len(), nil
}

// Set inserts or overwrites an entry. An existing key is removed first so
// its position in the eviction order resets to most-recent.
func (c *SlidingCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.cfg.TTL)
}

// SetWithTTL inserts an entry with an explicit lifetime overriding the
// store default. ttl <= 0 means the entry never expires.
func (c *SlidingCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil
	}

	if el, ok := c.entries[key]; ok {
		c.removeElementLocked(el)
	}

	now := c.now()
	entry := Entry[T]{Key: key, Value: value, InsertedAt: now}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	c.entries[key] = c.order.PushBack(entry)

	// Drop dead weight before evicting live entries.
	c.purgeExpiredLocked()
	for c.order.Len() > c.cfg.Size {
		c.evictOldestLocked()
	}
	c.stats.Size = c.order.Len()
	return nil
}

// Get returns the stored value, purging the entry if its TTL elapsed.
func (c *SlidingCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return zero, false, nil
	}

	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false, nil
	}
	entry := el.Value.(Entry[T])
	if entry.Expired(c.now()) {
		c.removeElementLocked(el)
		c.stats.Misses++
		c.stats.Size = c.order.Len()
		return zero, false, nil
	}
	c.stats.Hits++
	return entry.Value, true, nil
}

// Has reports whether Get would return a live value.
func (c *SlidingCache[T]) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.Get(ctx, key)
	return ok, err
}

// Delete removes the entry if present and reports whether removal occurred.
func (c *SlidingCache[T]) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return false, nil
	}
	el, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	entry := el.Value.(Entry[T])
	c.removeElementLocked(el)
	c.stats.Size = c.order.Len()
	if entry.Expired(c.now()) {
		return false, nil
	}
	return true, nil
}

// Clear removes all entries.
func (c *SlidingCache[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.stats.Size = 0
	return nil
}

// Snapshot returns all live entries in insertion order.
func (c *SlidingCache[T]) Snapshot(ctx context.Context) ([]Entry[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpiredLocked()

	out := make([]Entry[T], 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Entry[T]))
	}
	return out, nil
}

// Restore replaces the store contents with the given entries in order,
// keeping their recorded timestamps. Expired entries are skipped and the
// capacity bound is enforced on the result.
func (c *SlidingCache[T]) Restore(ctx context.Context, entries []Entry[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, len(entries))
	c.order.Init()

	now := c.now()
	for _, entry := range entries {
		if entry.Expired(now) {
			continue
		}
		if el, ok := c.entries[entry.Key]; ok {
			c.removeElementLocked(el)
		}
		c.entries[entry.Key] = c.order.PushBack(entry)
	}
	for c.order.Len() > c.cfg.Size {
		c.evictOldestLocked()
	}
	c.stats.Size = c.order.Len()
	return nil
}

// CacheStats returns a copy of the performance counters.
func (c *SlidingCache[T]) CacheStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// evictOldestLocked removes the front (oldest inserted) entry. Entries
// sharing a timestamp keep their original insertion order in the list,
// so the tie-break is stable by construction.
func (c *SlidingCache[T]) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(Entry[T])
	c.removeElementLocked(front)
	c.stats.Evictions++
	c.logger.Debug("evicted oldest entry",
		zap.String("key", entry.Key),
		zap.Time("inserted_at", entry.InsertedAt))
}

func (c *SlidingCache[T]) purgeExpiredLocked() {
	now := c.now()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(Entry[T]).Expired(now) {
			c.removeElementLocked(el)
		}
		el = next
	}
	c.stats.Size = c.order.Len()
}

func (c *SlidingCache[T]) removeElementLocked(el *list.Element) {
	delete(c.entries, el.Value.(Entry[T]).Key)
	c.order.Remove(el)
}
