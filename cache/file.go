package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileConfig configures the file-persisted store.
type FileConfig struct {
	// Path 持久化文件位置，必填。
	Path string `yaml:"path" json:"path"`
}

// FileCache 文件持久化存储：所有读写委托给内层存储，每次变更操作在
// 返回前同步地把内层全量快照落盘（无写回缓冲），进程崩溃最多丢失
// 进行中的那一次操作。
//
// 构造时若文件已存在则急切加载；损坏或不可读的文件是构造期错误而非
// 静默回退为空缓存，让数据损坏尽早暴露。落盘失败会传播给触发它的
// 变更调用，内层已应用的变更保持不变（丢的是这次写入的持久性）。
type FileCache[T any] struct {
	mu     sync.Mutex
	inner  SnapshotCache[T]
	path   string
	logger *zap.Logger
}

// NewFileCache creates a file-persisted store backed by an unconstrained
// in-memory store.
func NewFileCache[T any](cfg FileConfig, logger *zap.Logger) (*FileCache[T], error) {
	inner, err := NewUnconstrainedCache[T](UnconstrainedConfig{}, logger)
	if err != nil {
		return nil, err
	}
	return NewFileCacheWith[T](cfg, inner, logger)
}

// NewFileCacheWith creates a file-persisted store delegating live reads
// and writes to the given inner store (custom provider composition, e.g.
// a SlidingCache for a bounded persistent cache).
func NewFileCacheWith[T any](cfg FileConfig, inner SnapshotCache[T], logger *zap.Logger) (*FileCache[T], error) {
	if cfg.Path == "" {
		return nil, newConfigError("path", "must not be empty")
	}
	if inner == nil {
		return nil, newConfigError("inner", "must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &FileCache[T]{
		inner:  inner,
		path:   cfg.Path,
		logger: logger.With(zap.String("component", "cache.file"), zap.String("path", cfg.Path)),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Size delegates to the inner store; no I/O.
func (c *FileCache[T]) Size(ctx context.Context) (int, error) {
	return c.inner.Size(ctx)
}

// Get delegates to the inner store; no I/O.
func (c *FileCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	return c.inner.Get(ctx, key)
}

// Has delegates to the inner store; no I/O.
func (c *FileCache[T]) Has(ctx context.Context, key string) (bool, error) {
	return c.inner.Has(ctx, key)
}

// Set writes through the inner store and flushes the snapshot to disk
// before returning.
func (c *FileCache[T]) Set(ctx context.Context, key string, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inner.Set(ctx, key, value); err != nil {
		return err
	}
	return c.flush(ctx)
}

// SetWithTTL writes an entry with an explicit lifetime when the inner
// store supports per-entry TTL, falling back to Set otherwise.
func (c *FileCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tc, ok := c.inner.(TTLCache[T]); ok {
		if err := tc.SetWithTTL(ctx, key, value, ttl); err != nil {
			return err
		}
	} else {
		if err := c.inner.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return c.flush(ctx)
}

// Delete removes the entry and flushes the snapshot to disk.
func (c *FileCache[T]) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.inner.Delete(ctx, key)
	if err != nil {
		return removed, err
	}
	return removed, c.flush(ctx)
}

// Clear empties the store and flushes the empty snapshot to disk.
func (c *FileCache[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inner.Clear(ctx); err != nil {
		return err
	}
	return c.flush(ctx)
}

// Snapshot delegates to the inner store.
func (c *FileCache[T]) Snapshot(ctx context.Context) ([]Entry[T], error) {
	return c.inner.Snapshot(ctx)
}

// Restore replaces the contents and flushes the new snapshot to disk.
func (c *FileCache[T]) Restore(ctx context.Context, entries []Entry[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inner.Restore(ctx, entries); err != nil {
		return err
	}
	return c.flush(ctx)
}

func (c *FileCache[T]) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug("no existing cache file, starting empty")
			return nil
		}
		return fmt.Errorf("read cache file %s: %w", c.path, err)
	}

	var entries []Entry[T]
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode cache file %s: %w", c.path, err)
	}
	if err := c.inner.Restore(context.Background(), entries); err != nil {
		return fmt.Errorf("restore cache file %s: %w", c.path, err)
	}
	c.logger.Debug("loaded cache file", zap.Int("entries", len(entries)))
	return nil
}

// flush writes the full inner snapshot to a temp file and renames it into
// place, so readers never observe a partially written file.
func (c *FileCache[T]) flush(ctx context.Context) error {
	entries, err := c.inner.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache file %s: %w", c.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write cache file %s: %w", c.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache file %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache file %s: %w", c.path, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache file %s: %w", c.path, err)
	}
	return nil
}
