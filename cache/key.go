package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// KeyStrategy 缓存键生成策略接口
type KeyStrategy interface {
	// Key 为任意参数生成确定性的缓存键
	Key(v any) string

	// Name 返回策略名称（用于日志和调试）
	Name() string
}

// HashKeyStrategy Hash 缓存键策略
// 对参数的规范化 JSON 取 SHA-256，使用前 16 字节的十六进制表示。
// 结构相等的参数产生相同的键。
type HashKeyStrategy struct {
	prefix string
}

// NewHashKeyStrategy 创建 Hash 策略，prefix 作为生成键的命名空间前缀
func NewHashKeyStrategy(prefix string) *HashKeyStrategy {
	return &HashKeyStrategy{prefix: prefix}
}

// Name 返回策略名称
func (s *HashKeyStrategy) Name() string {
	return "hash"
}

// Key 生成 Hash 缓存键
func (s *HashKeyStrategy) Key(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// fallback: 使用 fmt.Sprintf 生成确定性字符串避免 key 碰撞
		data = []byte(fmt.Sprintf("%v", v))
	}
	hash := sha256.Sum256(data)
	return s.prefix + hex.EncodeToString(hash[:16])
}
