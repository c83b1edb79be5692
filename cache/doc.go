// 版权所有 2024 AgentCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供可插拔的缓存抽象与多种后端策略，用于记忆化高成本操作
（工具调用、模型调用、任意函数结果），由调用方以字符串键读写。

# 概述

所有存储实现统一的 Cache 能力接口（Size/Set/Get/Has/Delete/Clear），
调用方按策略显式构造存储实例，彼此可互换使用。缓存层不检查、不散列
值本身；键的构造属于调用方（或代表调用方的 memoize 包）。

# 存储策略

  - UnconstrainedCache：无容量上限的映射存储，默认不过期，开发环境常用。
  - SlidingCache：容量受限 + TTL 的滑动窗口存储，超容时按插入时间
    先进先出淘汰（非 LRU），过期条目在访问时惰性清除。
  - FileCache：文件持久化存储，包裹任意内存存储，每次变更同步落盘，
    构造时急切加载既有数据，损坏文件为构造期致命错误。
  - NullCache：空对象实现，永远为空，用于禁用缓存或测试替身。
  - RedisCache：基于 go-redis 的分布式后端，JSON 序列化，键前缀隔离。

# 辅助能力

  - SnapshotCache：快照/恢复能力，FileCache 依赖它同步磁盘。
  - TTLCache：按条目覆盖 TTL，memoize 的动态 TTL 钩子依赖它。
  - KeyStrategy / HashKeyStrategy：缓存键生成策略。
  - InstrumentedCache：Prometheus 命中率指标装饰器。
  - New / LoadConfig：按配置选择存储类型的统一工厂。

# 错误语义

未命中不是错误：Get 返回 (零值, false, nil)。构造参数非法在构造期
返回 ConfigError；仅文件与 Redis 存储的变更操作可能返回 I/O 错误，
缓存层内部不做重试，重试策略由调用方决定。

# 使用方式

	c, err := cache.NewSlidingCache[string](cache.SlidingConfig{Size: 50}, logger)
	_ = c.Set(ctx, "k", "v")
	v, ok, _ := c.Get(ctx, "k")
*/
package cache
