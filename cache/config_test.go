package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Sliding(t *testing.T) {
	path := writeConfigFile(t, `
type: sliding
sliding:
  size: 50
  ttl: 5m
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StoreSliding, cfg.Type)
	assert.Equal(t, 50, cfg.Sliding.Size)
	assert.Equal(t, 5*time.Minute, cfg.Sliding.TTL)
	// 文件未覆盖的字段保留默认值
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "default", cfg.Name)
}

func TestLoadConfig_InvalidType(t *testing.T) {
	path := writeConfigFile(t, "type: lru\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfig_ValidateSliding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = StoreSliding
	cfg.Sliding.Size = 0
	require.Error(t, cfg.Validate())
}

func TestConfig_ValidateFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = StoreFile
	require.Error(t, cfg.Validate(), "file store needs a path")

	cfg.File.Path = "/tmp/cache.json"
	cfg.File.Inner = StoreRedis
	require.Error(t, cfg.Validate(), "redis cannot back a file cache")

	cfg.File.Inner = StoreSliding
	require.NoError(t, cfg.Validate())
}

func TestNew_BuildsSelectedStore(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Type = StoreSliding
	cfg.Sliding = SlidingConfig{Size: 2}
	store, err := New[string](cfg, nil)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, "v"))
	}
	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestNew_DisabledReturnsNull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	store, err := New[string](cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", "v"))
	has, err := store.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestNew_FileWithSlidingInner(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Type = StoreFile
	cfg.File.Path = filepath.Join(t.TempDir(), "cache.json")
	cfg.File.Inner = StoreSliding
	cfg.Sliding = SlidingConfig{Size: 2}

	store, err := New[string](cfg, nil)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, "v"))
	}
	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}
