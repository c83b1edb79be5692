package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// =============================================================================
// 💾 Redis 存储
// =============================================================================

// RedisConfig Redis 存储配置
type RedisConfig struct {
	// Redis 地址
	Addr string `yaml:"addr" json:"addr"`

	// 密码
	Password string `yaml:"password" json:"password"`

	// 数据库编号
	DB int `yaml:"db" json:"db"`

	// 键前缀，用于隔离不同缓存实例的键空间
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`

	// 默认过期时间，0 表示永不过期
	DefaultTTL time.Duration `yaml:"default_ttl" json:"default_ttl"`

	// 最大重试次数
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// 连接池大小
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// 最小空闲连接数
	MinIdleConns int `yaml:"min_idle_conns" json:"min_idle_conns"`

	// 健康检查间隔，0 表示不启动健康检查
	HealthCheckInterval time.Duration `yaml:"health_check_interval" json:"health_check_interval"`
}

// DefaultRedisConfig 返回默认 Redis 存储配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "agentcache:",
		DefaultTTL:   0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisCache 基于 Redis 的 Cache 实现，值以 JSON 序列化存储。
// 同一实例拥有其键前缀下的全部键；Size 与 Clear 按前缀 SCAN。
type RedisCache[T any] struct {
	client *redis.Client
	cfg    RedisConfig
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewRedisCache 创建 Redis 存储并验证连接
func NewRedisCache[T any](cfg RedisConfig, logger *zap.Logger) (*RedisCache[T], error) {
	if cfg.DefaultTTL < 0 {
		return nil, newConfigError("default_ttl", "must not be negative")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c := &RedisCache[T]{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "cache.redis")),
	}

	if cfg.HealthCheckInterval > 0 {
		go c.healthCheckLoop()
	}

	c.logger.Info("redis cache initialized",
		zap.String("addr", cfg.Addr),
		zap.String("key_prefix", cfg.KeyPrefix),
	)
	return c, nil
}

// =============================================================================
// 🎯 核心方法
// =============================================================================

// Size 返回前缀下的键数量
func (c *RedisCache[T]) Size(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, fmt.Errorf("redis cache is closed")
	}

	count := 0
	iter := c.client.Scan(ctx, 0, c.cfg.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("cache size scan failed: %w", err)
	}
	return count, nil
}

// Set 写入缓存值，应用默认 TTL
func (c *RedisCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.cfg.DefaultTTL)
}

// SetWithTTL 以指定 TTL 写入缓存值，ttl <= 0 表示永不过期
func (c *RedisCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("redis cache is closed")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.cfg.KeyPrefix+key, data, ttl).Err(); err != nil {
		c.logger.Error("cache set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Get 读取缓存值，未命中返回 (零值, false, nil)
func (c *RedisCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	value, err := c.Fetch(ctx, key)
	if err != nil {
		var zero T
		if IsCacheMiss(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return value, true, nil
}

// Fetch 读取缓存值，未命中返回 ErrCacheMiss。
// 供希望"未命中即错误"的调用方使用，用 IsCacheMiss 判断。
func (c *RedisCache[T]) Fetch(ctx context.Context, key string) (T, error) {
	var zero T

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return zero, fmt.Errorf("redis cache is closed")
	}

	data, err := c.client.Get(ctx, c.cfg.KeyPrefix+key).Bytes()
	if err == redis.Nil {
		return zero, fmt.Errorf("key %q: %w", key, ErrCacheMiss)
	}
	if err != nil {
		c.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
		return zero, fmt.Errorf("cache get failed: %w", err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return value, nil
}

// Has 检查键是否存在
func (c *RedisCache[T]) Has(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false, fmt.Errorf("redis cache is closed")
	}

	count, err := c.client.Exists(ctx, c.cfg.KeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists check failed: %w", err)
	}
	return count > 0, nil
}

// Delete 删除缓存值，返回是否发生了删除
func (c *RedisCache[T]) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false, fmt.Errorf("redis cache is closed")
	}

	count, err := c.client.Del(ctx, c.cfg.KeyPrefix+key).Result()
	if err != nil {
		c.logger.Error("cache delete failed", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache delete failed: %w", err)
	}
	return count > 0, nil
}

// Clear 删除前缀下的全部键
func (c *RedisCache[T]) Clear(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("redis cache is closed")
	}

	iter := c.client.Scan(ctx, 0, c.cfg.KeyPrefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("cache clear failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache clear scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache clear failed: %w", err)
		}
	}
	return nil
}

// Ping 检查 Redis 连接
func (c *RedisCache[T]) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("redis cache is closed")
	}
	return c.client.Ping(ctx).Err()
}

// Close 关闭底层连接
func (c *RedisCache[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Info("closing redis cache")
	return c.client.Close()
}

// =============================================================================
// 🏥 健康检查
// =============================================================================

// healthCheckLoop 健康检查循环
func (c *RedisCache[T]) healthCheckLoop() {
	ticker := time.NewTicker(c.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.RLock()
		if c.closed {
			c.mu.RUnlock()
			return
		}
		c.mu.RUnlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Ping(ctx); err != nil {
			c.logger.Error("cache health check failed", zap.Error(err))
		} else {
			c.logger.Debug("cache health check passed")
		}
		cancel()
	}
}
