package cache

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// 📦 缓存配置与工厂
// =============================================================================
// 统一配置加载与按策略构造存储。
//
// 使用方法:
//
//	cfg, err := cache.LoadConfig("cache.yaml")
//	store, err := cache.New[string](cfg, logger)
//
// 配置优先级: 默认值 → YAML 文件
// =============================================================================

// StoreType 存储策略类型
type StoreType string

const (
	StoreUnconstrained StoreType = "unconstrained"
	StoreSliding       StoreType = "sliding"
	StoreFile          StoreType = "file"
	StoreNull          StoreType = "null"
	StoreRedis         StoreType = "redis"
)

// Config 缓存层完整配置
type Config struct {
	// Type 存储策略，默认 unconstrained
	Type StoreType `yaml:"type" json:"type"`

	// Enabled 为 false 时工厂返回 NullCache，调用方无需条件分支
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Name 实例名，用于指标标签，默认 "default"
	Name string `yaml:"name" json:"name"`

	// MetricsNamespace 非空时以 Prometheus 指标装饰器包裹存储
	MetricsNamespace string `yaml:"metrics_namespace" json:"metrics_namespace"`

	// Unconstrained 无界存储配置
	Unconstrained UnconstrainedConfig `yaml:"unconstrained" json:"unconstrained"`

	// Sliding 滑动窗口存储配置
	Sliding SlidingConfig `yaml:"sliding" json:"sliding"`

	// File 文件持久化存储配置
	File FileStoreConfig `yaml:"file" json:"file"`

	// Redis Redis 存储配置
	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// FileStoreConfig 文件存储的工厂配置：落盘位置加内层存储类型
type FileStoreConfig struct {
	FileConfig `yaml:",inline"`

	// Inner 内层存储类型，unconstrained（默认）或 sliding
	Inner StoreType `yaml:"inner" json:"inner"`
}

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Type:    StoreUnconstrained,
		Enabled: true,
		Name:    "default",
		Sliding: SlidingConfig{Size: 1000},
		File: FileStoreConfig{
			Inner: StoreUnconstrained,
		},
		Redis: DefaultRedisConfig(),
	}
}

// LoadConfig 从 YAML 文件加载配置，文件中省略的字段保留默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read cache config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse cache config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate 校验配置，非法配置是构造期错误
func (c Config) Validate() error {
	switch c.Type {
	case StoreUnconstrained, StoreSliding, StoreFile, StoreNull, StoreRedis:
	case "":
		return newConfigError("type", "must not be empty")
	default:
		return newConfigError("type", fmt.Sprintf("unknown store type %q", c.Type))
	}
	if c.Type == StoreSliding && c.Sliding.Size <= 0 {
		return newConfigError("sliding.size", "must be a positive capacity")
	}
	if c.Type == StoreFile {
		if c.File.Path == "" {
			return newConfigError("file.path", "must not be empty")
		}
		switch c.File.Inner {
		case StoreSliding:
			if c.Sliding.Size <= 0 {
				return newConfigError("sliding.size", "must be a positive capacity")
			}
		case StoreUnconstrained, "":
		default:
			return newConfigError("file.inner", fmt.Sprintf("store type %q cannot back a file cache", c.File.Inner))
		}
	}
	return nil
}

// New 按配置构造存储。Enabled 为 false 时返回 NullCache；
// MetricsNamespace 非空时包裹 Prometheus 指标装饰器。
func New[T any](cfg Config, logger *zap.Logger) (Cache[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return NewNullCache[T](), nil
	}

	var (
		store Cache[T]
		err   error
	)
	switch cfg.Type {
	case StoreUnconstrained:
		store, err = NewUnconstrainedCache[T](cfg.Unconstrained, logger)
	case StoreSliding:
		store, err = NewSlidingCache[T](cfg.Sliding, logger)
	case StoreFile:
		var inner SnapshotCache[T]
		if cfg.File.Inner == StoreSliding {
			inner, err = NewSlidingCache[T](cfg.Sliding, logger)
		} else {
			inner, err = NewUnconstrainedCache[T](cfg.Unconstrained, logger)
		}
		if err == nil {
			store, err = NewFileCacheWith[T](cfg.File.FileConfig, inner, logger)
		}
	case StoreNull:
		store = NewNullCache[T]()
	case StoreRedis:
		store, err = NewRedisCache[T](cfg.Redis, logger)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MetricsNamespace != "" {
		store, err = NewInstrumentedCache[T](store, cfg.MetricsNamespace, cfg.Name, nil, logger)
		if err != nil {
			return nil, err
		}
	}
	return store, nil
}
