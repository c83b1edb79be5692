package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnconstrained(t *testing.T, cfg UnconstrainedConfig) *UnconstrainedCache[string] {
	t.Helper()
	c, err := NewUnconstrainedCache[string](cfg, nil)
	require.NoError(t, err)
	return c
}

func TestUnconstrained_SetAndGet(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	has, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUnconstrained_GetMissing(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{})
	ctx := context.Background()

	// 未命中不是错误
	value, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", value)
}

func TestUnconstrained_LastSetWins(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "first"))
	require.NoError(t, c.Set(ctx, "k", "second"))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestUnconstrained_Delete(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))

	removed, err := c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUnconstrained_Clear(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{})
	ctx := context.Background()

	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		require.NoError(t, c.Set(ctx, k, "v"))
	}
	require.NoError(t, c.Clear(ctx))

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
	for _, k := range keys {
		has, err := c.Has(ctx, k)
		require.NoError(t, err)
		assert.False(t, has, "key %q should be gone after clear", k)
	}
}

func TestUnconstrained_TTLExpiry(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{TTL: time.Minute})
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "k", "v"))

	has, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)

	// 越过 TTL 后条目视为不存在，Size 反映清除
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	has, err = c.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, has)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestUnconstrained_Disabled(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{Disabled: true})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))

	has, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, has)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	c.SetEnabled(true)
	assert.True(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "k", "v"))
	has, err = c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUnconstrained_NegativeTTLRejected(t *testing.T) {
	_, err := NewUnconstrainedCache[string](UnconstrainedConfig{TTL: -time.Second}, nil)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestUnconstrained_SnapshotRestore(t *testing.T) {
	c := newTestUnconstrained(t, UnconstrainedConfig{})
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "a", "1"))
	c.now = func() time.Time { return base.Add(time.Second) }
	require.NoError(t, c.Set(ctx, "b", "2"))

	entries, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)

	other := newTestUnconstrained(t, UnconstrainedConfig{})
	require.NoError(t, other.Restore(ctx, entries))
	value, ok, err := other.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)
}
