package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSliding(t *testing.T, cfg SlidingConfig) *SlidingCache[string] {
	t.Helper()
	c, err := NewSlidingCache[string](cfg, nil)
	require.NoError(t, err)
	return c
}

func TestSliding_InvalidConfig(t *testing.T) {
	_, err := NewSlidingCache[string](SlidingConfig{Size: 0}, nil)
	require.Error(t, err)

	_, err = NewSlidingCache[string](SlidingConfig{Size: -1}, nil)
	require.Error(t, err)

	_, err = NewSlidingCache[string](SlidingConfig{Size: 10, TTL: -time.Second}, nil)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSliding_EvictsOldestInserted(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 3})
	ctx := context.Background()

	// size=3 → 插入 a,b,c,d 后 a 被淘汰，剩余最新 3 个
	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Set(ctx, k, "v-"+k))
	}

	has, err := c.Has(ctx, "a")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = c.Has(ctx, "d")
	require.NoError(t, err)
	assert.True(t, has)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)
	assert.Equal(t, int64(1), c.CacheStats().Evictions)
}

func TestSliding_CapacityInvariantOverflow(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 5})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v"))
		size, err := c.Size(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, size, 5)
	}

	// 留存的正是最近插入的 5 个
	for i := 15; i < 20; i++ {
		has, err := c.Has(ctx, fmt.Sprintf("k%d", i))
		require.NoError(t, err)
		assert.True(t, has)
	}
	has, err := c.Has(ctx, "k14")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSliding_ResetRefreshesEvictionOrder(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 3})
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, "old"))
	}

	// 重设已有键：值更新、位置刷新为最新、size 不变
	require.NoError(t, c.Set(ctx, "a", "new"))
	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	value, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", value)

	// 下一次淘汰的应是 b（现在最旧），而不是 a
	require.NoError(t, c.Set(ctx, "d", "v"))
	has, err := c.Has(ctx, "b")
	require.NoError(t, err)
	assert.False(t, has)
	has, err = c.Has(ctx, "a")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSliding_TTLExpiry(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 10, TTL: time.Minute})
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "k", "v"))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestSliding_SetWithTTLOverride(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 10, TTL: time.Minute})
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.SetWithTTL(ctx, "long", "v", time.Hour))
	require.NoError(t, c.Set(ctx, "short", "v"))

	c.now = func() time.Time { return base.Add(10 * time.Minute) }
	has, err := c.Has(ctx, "short")
	require.NoError(t, err)
	assert.False(t, has)
	has, err = c.Has(ctx, "long")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSliding_ExpiredEntriesPurgedBeforeEviction(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 3, TTL: time.Minute})
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "a", "v"))
	require.NoError(t, c.Set(ctx, "b", "v"))
	require.NoError(t, c.Set(ctx, "c", "v"))

	// a,b,c 已过期；插入 d 应清除它们而不产生容量淘汰
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.NoError(t, c.Set(ctx, "d", "v"))

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
	assert.Equal(t, int64(0), c.CacheStats().Evictions)
}

func TestSliding_Clear(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 5})
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, "v"))
	}
	require.NoError(t, c.Clear(ctx))

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
	for _, k := range []string{"a", "b", "c"} {
		has, err := c.Has(ctx, k)
		require.NoError(t, err)
		assert.False(t, has)
	}
}

func TestSliding_Disabled(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 5})
	ctx := context.Background()

	c.SetEnabled(false)
	require.NoError(t, c.Set(ctx, "k", "v"))
	has, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, has)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestSliding_Stats(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 5})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	_, _, _ = c.Get(ctx, "k")
	_, _, _ = c.Get(ctx, "missing")

	stats := c.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestSliding_SnapshotRestoreKeepsOrder(t *testing.T) {
	c := newTestSliding(t, SlidingConfig{Size: 5})
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, "v-"+k))
	}
	entries, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// 恢复到更小容量的存储时，从最旧端淘汰
	small := newTestSliding(t, SlidingConfig{Size: 2})
	require.NoError(t, small.Restore(ctx, entries))

	has, err := small.Has(ctx, "a")
	require.NoError(t, err)
	assert.False(t, has)
	for _, k := range []string{"b", "c"} {
		has, err := small.Has(ctx, k)
		require.NoError(t, err)
		assert.True(t, has)
	}
}
