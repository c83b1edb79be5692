package cache

import (
	"errors"
	"fmt"
)

// ErrCacheMiss 缓存未命中哨兵错误。公开接口以 ok-bool 表达未命中，
// 该哨兵仅供希望"未命中即错误"的内部路径使用（如 Redis 适配）。
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中错误。
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// ConfigError 构造期配置错误：非法容量、负 TTL、损坏的持久化文件等。
// 配置错误在构造时检出，操作期不再校验。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache config: %s: %s", e.Field, e.Reason)
}

func newConfigError(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}
