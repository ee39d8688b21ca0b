package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

// entry lets the cache remember categories that have no benchmark yet.
type entry struct {
	benchmark *domain.Benchmark
}

// BenchmarkCache serves benchmarks from memory for ttl. Benchmarks are
// eventually consistent, so a stale read until expiry is acceptable.
type BenchmarkCache struct {
	store ports.BenchmarkStore
	lru   *expirable.LRU[string, entry]
}

func NewBenchmarkCache(store ports.BenchmarkStore, size int, ttl time.Duration) *BenchmarkCache {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &BenchmarkCache{
		store: store,
		lru:   expirable.NewLRU[string, entry](size, nil, ttl),
	}
}

func (c *BenchmarkCache) GetBenchmark(ctx context.Context, category string) (*domain.Benchmark, error) {
	if cached, ok := c.lru.Get(category); ok {
		return copyBenchmark(cached.benchmark), nil
	}
	b, err := c.store.GetBenchmark(ctx, category)
	if err != nil {
		return nil, err
	}
	c.lru.Add(category, entry{benchmark: copyBenchmark(b)})
	return b, nil
}

func (c *BenchmarkCache) Invalidate(category string) {
	c.lru.Remove(category)
}

func copyBenchmark(b *domain.Benchmark) *domain.Benchmark {
	if b == nil {
		return nil
	}
	out := *b
	return &out
}
