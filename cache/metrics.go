package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标装饰器
// =============================================================================

// InstrumentedCache 以 Prometheus 指标包裹任意 Cache 实现。
// 指标按 namespace + cache 标签区分，同一 Registerer 下 name 必须唯一。
type InstrumentedCache[T any] struct {
	inner Cache[T]

	hits    prometheus.Counter
	misses  prometheus.Counter
	sets    prometheus.Counter
	deletes prometheus.Counter
	size    prometheus.Gauge

	logger *zap.Logger
}

// NewInstrumentedCache 创建指标装饰器。reg 为 nil 时使用默认 Registerer。
func NewInstrumentedCache[T any](inner Cache[T], namespace, name string, reg prometheus.Registerer, logger *zap.Logger) (*InstrumentedCache[T], error) {
	if inner == nil {
		return nil, newConfigError("inner", "must not be nil")
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	labels := prometheus.Labels{"cache": name}
	c := &InstrumentedCache[T]{
		inner: inner,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_hits_total",
			Help:        "Total number of cache hits",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_misses_total",
			Help:        "Total number of cache misses",
			ConstLabels: labels,
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_sets_total",
			Help:        "Total number of cache writes",
			ConstLabels: labels,
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_deletes_total",
			Help:        "Total number of cache deletes",
			ConstLabels: labels,
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "cache_size",
			Help:        "Current number of live cache entries",
			ConstLabels: labels,
		}),
		logger: logger.With(zap.String("component", "cache.metrics")),
	}

	for _, col := range []prometheus.Collector{c.hits, c.misses, c.sets, c.deletes, c.size} {
		if err := reg.Register(col); err != nil {
			return nil, newConfigError("metrics", err.Error())
		}
	}
	return c, nil
}

// Size 委托内层并更新 size 指标
func (c *InstrumentedCache[T]) Size(ctx context.Context) (int, error) {
	n, err := c.inner.Size(ctx)
	if err == nil {
		c.size.Set(float64(n))
	}
	return n, err
}

// Set 委托内层并累计写入计数
func (c *InstrumentedCache[T]) Set(ctx context.Context, key string, value T) error {
	if err := c.inner.Set(ctx, key, value); err != nil {
		return err
	}
	c.sets.Inc()
	return nil
}

// Get 委托内层并累计命中/未命中计数
func (c *InstrumentedCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	value, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			c.hits.Inc()
		} else {
			c.misses.Inc()
		}
	}
	return value, ok, err
}

// Has 委托内层并累计命中/未命中计数
func (c *InstrumentedCache[T]) Has(ctx context.Context, key string) (bool, error) {
	ok, err := c.inner.Has(ctx, key)
	if err == nil {
		if ok {
			c.hits.Inc()
		} else {
			c.misses.Inc()
		}
	}
	return ok, err
}

// Delete 委托内层并累计删除计数
func (c *InstrumentedCache[T]) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := c.inner.Delete(ctx, key)
	if err == nil && removed {
		c.deletes.Inc()
	}
	return removed, err
}

// Clear 委托内层并归零 size 指标
func (c *InstrumentedCache[T]) Clear(ctx context.Context) error {
	if err := c.inner.Clear(ctx); err != nil {
		return err
	}
	c.size.Set(0)
	return nil
}
