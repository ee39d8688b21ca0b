package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type countingStore struct {
	calls     int
	benchmark *domain.Benchmark
	err       error
}

func (s *countingStore) GetBenchmark(context.Context, string) (*domain.Benchmark, error) {
	s.calls++
	return s.benchmark, s.err
}

func TestBenchmarkCacheServesRepeatedReadsFromMemory(t *testing.T) {
	store := &countingStore{benchmark: &domain.Benchmark{Category: "bathroom", MedianValue: 70000}}
	c := NewBenchmarkCache(store, 8, time.Minute)

	first, err := c.GetBenchmark(context.Background(), "bathroom")
	require.NoError(t, err)
	first.MedianValue = 1

	second, err := c.GetBenchmark(context.Background(), "bathroom")
	require.NoError(t, err)
	assert.Equal(t, 70000.0, second.MedianValue)
	assert.Equal(t, 1, store.calls)
}

func TestBenchmarkCacheRemembersMissingCategory(t *testing.T) {
	store := &countingStore{}
	c := NewBenchmarkCache(store, 8, time.Minute)

	for i := 0; i < 3; i++ {
		b, err := c.GetBenchmark(context.Background(), "kitchen")
		require.NoError(t, err)
		assert.Nil(t, b)
	}
	assert.Equal(t, 1, store.calls)
}

func TestBenchmarkCacheDoesNotCacheErrorsAndInvalidates(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	c := NewBenchmarkCache(store, 8, time.Minute)

	_, err := c.GetBenchmark(context.Background(), "roof")
	require.Error(t, err)

	store.err = nil
	store.benchmark = &domain.Benchmark{Category: "roof"}
	_, err = c.GetBenchmark(context.Background(), "roof")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)

	c.Invalidate("roof")
	_, err = c.GetBenchmark(context.Background(), "roof")
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
}
